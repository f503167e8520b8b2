package petform

import (
	"strconv"
	"strings"

	"github.com/HristoTrendafilov/pet-store/internal/api"
	"github.com/HristoTrendafilov/pet-store/internal/refdata"
)

// Field names used as FieldErrors keys and by the view to place inline
// messages next to the offending control.
const (
	FieldName      = "petName"
	FieldKind      = "kind"
	FieldAge       = "age"
	FieldNotes     = "notes"
	FieldAddedDate = "addedDate"
)

// Values holds the form's uncommitted input. Every field carries its edit
// control's native value type (free text for numbers and dates, a bool for
// the checkbox) so the user can type anything before validation coerces it
// back into api.PetFormData.
type Values struct {
	PetName        string
	Kind           string
	Age            string
	Notes          string
	HealthProblems bool
	AddedDate      string
}

// FieldErrors maps a field name to its validation message. These are local
// errors: they are shown inline and never reach the diagnostic sink.
type FieldErrors map[string]string

func initialValues() Values {
	return Values{AddedDate: api.Today().String()}
}

func valuesFromPet(pet api.Pet) Values {
	return Values{
		PetName:        pet.PetName,
		Kind:           strconv.Itoa(pet.Kind),
		Age:            strconv.Itoa(pet.Age),
		Notes:          pet.Notes,
		HealthProblems: pet.HealthProblems,
		AddedDate:      pet.AddedDate.String(),
	}
}

// coerce validates the required fields and converts Values into the wire
// form. A non-empty FieldErrors means the data must not be submitted.
func (v Values) coerce(cache *refdata.Cache) (api.PetFormData, FieldErrors) {
	errs := FieldErrors{}
	var data api.PetFormData

	data.PetName = strings.TrimSpace(v.PetName)
	if data.PetName == "" {
		errs[FieldName] = "Name is required"
	}

	kindRaw := strings.TrimSpace(v.Kind)
	if kindRaw == "" {
		errs[FieldKind] = "Kind is required"
	} else if kind, err := strconv.Atoi(kindRaw); err != nil {
		errs[FieldKind] = "Kind must be a number"
	} else if _, ok := cache.DisplayName(kind); !ok {
		errs[FieldKind] = "Kind must be one of the available kinds"
	} else {
		data.Kind = kind
	}

	ageRaw := strings.TrimSpace(v.Age)
	if ageRaw == "" {
		errs[FieldAge] = "Age is required"
	} else if age, err := strconv.Atoi(ageRaw); err != nil || age < 0 {
		errs[FieldAge] = "Age must be a whole number of years"
	} else {
		data.Age = age
	}

	dateRaw := strings.TrimSpace(v.AddedDate)
	if dateRaw == "" {
		errs[FieldAddedDate] = "Added date is required"
	} else if added, err := api.ParseDate(dateRaw); err != nil {
		errs[FieldAddedDate] = "Added date must be a valid date (YYYY-MM-DD)"
	} else {
		data.AddedDate = added
	}

	data.Notes = v.Notes
	data.HealthProblems = v.HealthProblems

	if len(errs) > 0 {
		return api.PetFormData{}, errs
	}
	return data, nil
}
