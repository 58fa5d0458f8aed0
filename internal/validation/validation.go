package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/julianstephens/hsplan/internal/constants"
	"github.com/julianstephens/hsplan/internal/models"
	"github.com/julianstephens/hsplan/internal/utils"
)

// ConflictType classifies a problem found while checking a plan
type ConflictType string

const (
	ConflictInvalidField          ConflictType = "invalid_field"
	ConflictPlanRangeInverted     ConflictType = "plan_range_inverted"
	ConflictEmptyMask             ConflictType = "empty_weekday_mask"
	ConflictResourceMisconfigured ConflictType = "resource_misconfigured"
	ConflictLockedOutsidePlan     ConflictType = "locked_outside_plan"
	ConflictLockedDisallowedDay   ConflictType = "locked_disallowed_day"
	ConflictDuplicateUnit         ConflictType = "duplicate_unit"
	ConflictUnitOutOfCatalog      ConflictType = "unit_out_of_catalog"
)

// Conflict is a single problem found in a plan or one of its occurrences
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string // YYYY-MM-DD, when the conflict is tied to a day
	IDs         []string
}

type ValidationResult struct {
	Conflicts []Conflict
}

func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport renders the conflicts one per line
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}
	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

func (vr *ValidationResult) add(t ConflictType, date string, desc string, ids ...string) {
	vr.Conflicts = append(vr.Conflicts, Conflict{Type: t, Description: desc, Date: date, IDs: ids})
}

// FieldError describes one rejected field, named by its json tag
type FieldError struct {
	Field   string
	Message string
}

// Error is returned by Struct when a record fails validation
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

const (
	isoDateTag  = "isodate"
	isoDateText = "{0} must be a date in YYYY-MM-DD format"
)

// Validator checks model records before they are persisted
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func New() *Validator {
	locale := en.New()
	translator, _ := ut.New(locale, locale).GetTranslator("en")

	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(isoDateTag, func(fl validator.FieldLevel) bool {
		_, err := utils.ParseDate(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterTranslation(isoDateTag, translator,
		func(t ut.Translator) error { return t.Add(isoDateTag, isoDateText, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(isoDateTag, fe.Field())
			return s
		},
	)

	validate.RegisterStructValidation(planRange, models.Plan{})

	return &Validator{validate: validate, translator: translator}
}

// planRange rejects plans whose start date falls after their end date.
func planRange(sl validator.StructLevel) {
	plan := sl.Current().Interface().(models.Plan)
	start, err1 := utils.ParseDate(plan.StartDate)
	end, err2 := utils.ParseDate(plan.EndDate)
	if err1 != nil || err2 != nil {
		return
	}
	if start.After(end) {
		sl.ReportError(plan.StartDate, "start_date", "StartDate", "lte_end_date", plan.EndDate)
	}
}

// Struct validates a model record. It returns *Error listing every rejected field.
func (v *Validator) Struct(record any) error {
	err := v.validate.Struct(record)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{}
	for _, fe := range verrs {
		msg := fe.Translate(v.translator)
		if fe.Tag() == "lte_end_date" {
			msg = fmt.Sprintf("start_date %s is after end_date %v", fe.Value(), fe.Param())
		}
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

// PlanSnapshot is everything CheckPlan reads about a plan
type PlanSnapshot struct {
	Plan        models.Plan
	Resource    models.Resource
	UnitCount   int
	Occurrences []models.TaskOccurrence
	// AsOf (YYYY-MM-DD) separates history from upcoming work. A missed unit
	// may be scheduled again, so only occurrences on or after AsOf count as
	// duplicates. Empty means every occurrence counts.
	AsOf string
}

// CheckPlan looks for problems that would make materialization surprising:
// invalid fields, an inverted range, a resource that cannot produce work and
// persisted occurrences that no longer fit the plan.
func (v *Validator) CheckPlan(snap PlanSnapshot) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	plan := snap.Plan

	for _, record := range []any{plan, snap.Resource} {
		var verr *Error
		if err := v.Struct(record); errors.As(err, &verr) {
			for _, f := range verr.Fields {
				if f.Field == "start_date" && strings.Contains(f.Message, "is after") {
					result.add(ConflictPlanRangeInverted, "", f.Message, plan.ID)
					continue
				}
				result.add(ConflictInvalidField, "", f.Message)
			}
		}
	}

	if plan.AllowedDaysMask&constants.AllDaysMask == 0 {
		result.add(ConflictEmptyMask, "", fmt.Sprintf("Plan %s allows no weekdays and will never schedule anything", plan.ID), plan.ID)
	}

	switch snap.Resource.Kind {
	case constants.ResourceKindBook, constants.ResourceKindCustom:
		if snap.UnitCount <= 0 {
			result.add(ConflictResourceMisconfigured, "", fmt.Sprintf("Resource %q has no units registered", snap.Resource.Title), snap.Resource.ID)
		}
	case constants.ResourceKindTime:
		if snap.Resource.MinutesPerOccurrence == nil || *snap.Resource.MinutesPerOccurrence <= 0 {
			result.add(ConflictResourceMisconfigured, "", fmt.Sprintf("Time resource %q has no minutes per occurrence", snap.Resource.Title), snap.Resource.ID)
		}
	}

	seen := make(map[int][]string)
	for _, occ := range snap.Occurrences {
		if occ.Date < plan.StartDate || occ.Date > plan.EndDate {
			if occ.Locked {
				result.add(ConflictLockedOutsidePlan, occ.Date,
					fmt.Sprintf("Locked occurrence %s on %s is outside %s..%s", occ.ID, occ.Date, plan.StartDate, plan.EndDate), occ.ID)
			}
		} else if d, err := utils.ParseDate(occ.Date); err == nil && occ.Locked && !utils.MaskAllows(plan.AllowedDaysMask, d) {
			result.add(ConflictLockedDisallowedDay, occ.Date,
				fmt.Sprintf("Locked occurrence %s falls on %s, which the plan does not allow", occ.ID, d.Weekday()), occ.ID)
		}
		if occ.UnitIndex == nil {
			continue
		}
		idx := *occ.UnitIndex
		if occ.Date >= snap.AsOf {
			seen[idx] = append(seen[idx], occ.ID)
		}
		if snap.UnitCount > 0 && idx > snap.UnitCount {
			result.add(ConflictUnitOutOfCatalog, occ.Date,
				fmt.Sprintf("Occurrence %s references unit %d but the catalog has %d units", occ.ID, idx, snap.UnitCount), occ.ID)
		}
	}

	dupes := make([]int, 0)
	for idx, ids := range seen {
		if len(ids) > 1 {
			dupes = append(dupes, idx)
		}
	}
	sort.Ints(dupes)
	for _, idx := range dupes {
		result.add(ConflictDuplicateUnit, "",
			fmt.Sprintf("Unit %d is scheduled %d times (IDs: %v)", idx, len(seen[idx]), seen[idx]), seen[idx]...)
	}

	return result
}
