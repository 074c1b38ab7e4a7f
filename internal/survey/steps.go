// Package survey implements the questionnaire flow: the step graph with its guarded
// transitions, input normalization, subject search classification and record assembly.
// Everything here is transport-free; the Telegram layer lives in internal/bot.
package survey

import "fmt"

// Step identifies one node of the questionnaire graph.
type Step uint8

// Steps in forward order. The order of the constants is the order of the
// unconditional path and is relied on by Steps().
const (
	StepNone Step = iota
	StepSearch
	StepPhone
	StepAddress
	StepLocation
	StepEducation
	StepDocument
	StepAchievements
	StepAchievementDetails
	StepCertificate
	StepCertificateType
	StepCertificateDetails
	StepGrant
	StepGrantDetails
	StepSocialProtection
	StepIronBook
	StepYouthBook
	StepFatherAlive
	StepFatherName
	StepFatherPhone
	StepMotherAlive
	StepMotherName
	StepMotherPhone
	StepParentsTogether
	StepLivingType
	StepDormitory
	StepRentAddress
	StepRentLocation
	StepRentOwner
	StepWorking
	StepWorkplace
	StepMarried
	StepForeignPassport
	StepSocialChannels
	StepSocialLinks
	StepCompleted

	stepCount
)

// Stable names are persisted in session stores; never renumber them.
var stepNames = [stepCount]string{
	StepNone:               "",
	StepSearch:             "search",
	StepPhone:              "q1_phone",
	StepAddress:            "q2_address",
	StepLocation:           "q3_location",
	StepEducation:          "q4_previous_education",
	StepDocument:           "q5_document",
	StepAchievements:       "q6_achievements",
	StepAchievementDetails: "q6_achievements_details",
	StepCertificate:        "q7_certificate",
	StepCertificateType:    "q7_certificate_type",
	StepCertificateDetails: "q7_certificate_details",
	StepGrant:              "q9_grant",
	StepGrantDetails:       "q9_grant_details",
	StepSocialProtection:   "q10_social_protection",
	StepIronBook:           "q11_iron_book",
	StepYouthBook:          "q12_youth_book",
	StepFatherAlive:        "q14_father_alive",
	StepFatherName:         "q13_father_name",
	StepFatherPhone:        "q14_father_phone",
	StepMotherAlive:        "q16_mother_alive",
	StepMotherName:         "q15_mother_name",
	StepMotherPhone:        "q16_mother_phone",
	StepParentsTogether:    "q17_parents_together",
	StepLivingType:         "q18_living_type",
	StepDormitory:          "q18_ttj_type",
	StepRentAddress:        "q19_rent_address",
	StepRentLocation:       "q20_rent_location",
	StepRentOwner:          "q21_rent_owner",
	StepWorking:            "q22_working",
	StepWorkplace:          "q23_workplace",
	StepMarried:            "q24_married",
	StepForeignPassport:    "q25_foreign_passport",
	StepSocialChannels:     "q26_social_channels",
	StepSocialLinks:        "q26_social_links",
	StepCompleted:          "completed",
}

var stepByName = func() map[string]Step {
	m := make(map[string]Step, stepCount)
	for i := StepSearch; i < stepCount; i++ {
		m[stepNames[i]] = i
	}
	return m
}()

// String returns the persisted name of the step.
func (s Step) String() string {
	if s >= stepCount {
		return fmt.Sprintf("step(%d)", uint8(s))
	}
	return stepNames[s]
}

// Valid reports whether s is a known step other than StepNone.
func (s Step) Valid() bool {
	return s > StepNone && s < stepCount
}

// Question reports whether s is one of the numbered questions.
func (s Step) Question() bool {
	return s > StepSearch && s < StepCompleted
}

// ParseStep resolves a persisted step name.
func ParseStep(name string) (Step, bool) {
	s, ok := stepByName[name]
	return s, ok
}

// Steps lists every step a session can be in, search first and completed last.
func Steps() []Step {
	out := make([]Step, 0, stepCount-1)
	for s := StepSearch; s < stepCount; s++ {
		out = append(out, s)
	}
	return out
}
