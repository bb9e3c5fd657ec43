package models

import "strings"

// Role enum, as carried in the credential's roles claim
type Role string

const (
	RoleAdmin   Role = "ROLE_ADMIN"
	RoleDoctor  Role = "ROLE_DOCTOR"
	RolePatient Role = "ROLE_PATIENT"
)

// ParseRole accepts both the claim form (ROLE_DOCTOR) and the short form (doctor).
func ParseRole(s string) (Role, bool) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(upper, "ROLE_") {
		upper = "ROLE_" + upper
	}
	switch Role(upper) {
	case RoleAdmin, RoleDoctor, RolePatient:
		return Role(upper), true
	}
	return "", false
}

// Gender enum
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// BloodGroup enum
type BloodGroup string

const (
	BloodGroupAPositive  BloodGroup = "A_POSITIVE"
	BloodGroupANegative  BloodGroup = "A_NEGATIVE"
	BloodGroupBPositive  BloodGroup = "B_POSITIVE"
	BloodGroupBNegative  BloodGroup = "B_NEGATIVE"
	BloodGroupABPositive BloodGroup = "AB_POSITIVE"
	BloodGroupABNegative BloodGroup = "AB_NEGATIVE"
	BloodGroupOPositive  BloodGroup = "O_POSITIVE"
	BloodGroupONegative  BloodGroup = "O_NEGATIVE"
)

// User is the account record embedded in doctor and patient representations.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Gender    Gender `json:"gender,omitempty"`
}

// FullName joins first and last name
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Patient represents the patient side of an appointment
type Patient struct {
	ID             int64      `json:"id"`
	User           User       `json:"user"`
	DateOfBirth    string     `json:"dateOfBirth,omitempty"`
	BloodGroup     BloodGroup `json:"bloodGroup,omitempty"`
	Allergies      string     `json:"allergies,omitempty"`
	MedicalHistory string     `json:"medicalHistory,omitempty"`
}

// Doctor represents a doctor listed in the directory
type Doctor struct {
	ID                 int64          `json:"id"`
	User               User           `json:"user"`
	Specialization     Specialization `json:"specialization"`
	ConsultationFees   float64        `json:"consultationFees"`
	AvailableDays      []string       `json:"availableDays"`
	AvailableTimeSlots []string       `json:"availableTimeSlots"`
	Experience         int            `json:"experience"`
	Education          string         `json:"education"`
	Biography          string         `json:"biography,omitempty"`
}

// Specialization enum
type Specialization string

const (
	SpecGeneralMedicine      Specialization = "GENERAL_MEDICINE"
	SpecCardiology           Specialization = "CARDIOLOGY"
	SpecDermatology          Specialization = "DERMATOLOGY"
	SpecEndocrinology        Specialization = "ENDOCRINOLOGY"
	SpecGastroenterology     Specialization = "GASTROENTEROLOGY"
	SpecNeurology            Specialization = "NEUROLOGY"
	SpecObstetricsGynecology Specialization = "OBSTETRICS_GYNECOLOGY"
	SpecOphthalmology        Specialization = "OPHTHALMOLOGY"
	SpecOrthopedics          Specialization = "ORTHOPEDICS"
	SpecPediatrics           Specialization = "PEDIATRICS"
	SpecPsychiatry           Specialization = "PSYCHIATRY"
	SpecPulmonology          Specialization = "PULMONOLOGY"
	SpecRadiology            Specialization = "RADIOLOGY"
	SpecUrology              Specialization = "UROLOGY"
)

// Specializations lists every specialization in display order
var Specializations = []Specialization{
	SpecGeneralMedicine, SpecCardiology, SpecDermatology, SpecEndocrinology,
	SpecGastroenterology, SpecNeurology, SpecObstetricsGynecology, SpecOphthalmology,
	SpecOrthopedics, SpecPediatrics, SpecPsychiatry, SpecPulmonology,
	SpecRadiology, SpecUrology,
}

// Valid reports whether s is a known specialization
func (s Specialization) Valid() bool {
	for _, known := range Specializations {
		if s == known {
			return true
		}
	}
	return false
}
