package survey

// Living type labels. Guards compare against these.
const (
	LivingHome      = "Uydan (oila bilan)"
	LivingTTJ       = "TTJ"
	LivingRent      = "Ijaradan"
	LivingRelatives = "Qarindoshlarnikida"
)

// CertificateTypes is the choice set of q7_certificate_type.
var CertificateTypes = []Choice{
	{Code: "ielts", Label: "IELTS", Button: "IELTS"},
	{Code: "milliy", Label: "Milliy sertifikat", Button: "Milliy sertifikat"},
	{Code: "toefl_ibt", Label: "TOEFL iBT", Button: "TOEFL iBT"},
	{Code: "toefl_itp", Label: "TOEFL ITP", Button: "TOEFL ITP"},
	{Code: "cambridge", Label: "Cambridge", Button: "Cambridge"},
	{Code: "linguaskill", Label: "Linguaskill", Button: "Linguaskill"},
	{Code: "duolingo", Label: "Duolingo", Button: "Duolingo"},
	{Code: "cefr", Label: "CEFR", Button: "CEFR"},
	{Code: "other", Label: "Boshqa", Button: "Boshqa"},
}

// LivingTypes is the choice set of q18_living_type.
var LivingTypes = []Choice{
	{Code: "home", Label: LivingHome, Button: "🏠 Uydan (oila bilan)"},
	{Code: "ttj", Label: LivingTTJ, Button: "🏢 TTJ (talabalar turar joyi)"},
	{Code: "rent", Label: LivingRent, Button: "🏘 Ijaradan"},
	{Code: "relatives", Label: LivingRelatives, Button: "👨‍👩‍👧 Qarindoshlarnikida"},
}

// Dormitories is the choice set of q18_ttj_type.
var Dormitories = []Choice{
	{Code: "uydan", Label: "Uydan", Button: "Uydan"},
	{Code: "jevachi", Label: "Jevachi TTJ dan", Button: "Jevachi TTJ dan"},
	{Code: "kuaf", Label: "KUAF TTJ dan", Button: "KUAF TTJ dan"},
	{Code: "texnika", Label: "Texnika DXSH dan", Button: "Texnika DXSH dan"},
	{Code: "kamolot", Label: "Kamolot Ko'cha TTJ dan", Button: "Kamolot Ko'cha TTJ dan"},
	{Code: "family_med", Label: "FAMILY MED TTJ dan", Button: "FAMILY MED TTJ dan"},
	{Code: "ijara", Label: "Ijaradan (kvartira)", Button: "Ijaradan (kvartira)"},
}

var (
	rentFields = []string{FieldRentAddress, FieldRentLocation, FieldRentOwner}
	certFields = []string{FieldCertificateType, FieldCertificateDetails, FieldCertificateFile}
)

func withTTJ(fields ...string) []string {
	return append(append([]string{}, fields...), FieldTTJLocation)
}

// Graph returns the questionnaire graph. Every call builds a fresh table.
func Graph() []*Node {
	return []*Node{
		{
			Step:    StepSearch,
			Kind:    KindFreeText,
			Forward: []Rule{next(StepPhone)},
		},
		{
			Step:    StepPhone,
			Kind:    KindFreeText,
			Field:   FieldPhone,
			Forward: []Rule{next(StepAddress)},
			Back:    []BackRule{back(StepSearch)},
		},
		{
			Step:    StepAddress,
			Kind:    KindFreeText,
			Field:   FieldPermanentAddress,
			Forward: []Rule{next(StepLocation)},
			Back:    []BackRule{back(StepPhone)},
		},
		{
			Step:    StepLocation,
			Kind:    KindLocation,
			Field:   FieldPermanentLocation,
			Forward: []Rule{next(StepEducation)},
			Back:    []BackRule{back(StepAddress)},
		},
		{
			Step:    StepEducation,
			Kind:    KindFreeText,
			Field:   FieldPreviousEducation,
			Forward: []Rule{next(StepDocument)},
			Back:    []BackRule{back(StepLocation)},
		},
		{
			Step:    StepDocument,
			Kind:    KindFreeText,
			Field:   FieldDocumentNumber,
			Forward: []Rule{next(StepAchievements)},
			Back:    []BackRule{back(StepEducation)},
		},
		{
			Step:  StepAchievements,
			Kind:  KindYesNo,
			Field: FieldHasAchievements,
			Forward: []Rule{
				when(yes(FieldHasAchievements), StepAchievementDetails),
				next(StepCertificate, FieldAchievements),
			},
			Back: []BackRule{back(StepDocument)},
		},
		{
			Step:    StepAchievementDetails,
			Kind:    KindFreeText,
			Field:   FieldAchievements,
			Forward: []Rule{next(StepCertificate)},
			Back:    []BackRule{back(StepAchievements)},
		},
		{
			Step:  StepCertificate,
			Kind:  KindYesNo,
			Field: FieldHasCertificate,
			Forward: []Rule{
				when(yes(FieldHasCertificate), StepCertificateType),
				next(StepGrant, certFields...),
			},
			Back: []BackRule{back(StepAchievements)},
		},
		{
			Step:    StepCertificateType,
			Kind:    KindChoiceSet,
			Field:   FieldCertificateType,
			Choices: CertificateTypes,
			Forward: []Rule{next(StepCertificateDetails)},
			Back:    []BackRule{back(StepCertificate)},
		},
		{
			Step:    StepCertificateDetails,
			Kind:    KindFreeText,
			Field:   FieldCertificateDetails,
			Forward: []Rule{next(StepGrant, FieldCertificateFile)},
			Back:    []BackRule{back(StepCertificateType)},
		},
		{
			Step:  StepGrant,
			Kind:  KindYesNo,
			Field: FieldHasGrant,
			Forward: []Rule{
				when(yes(FieldHasGrant), StepGrantDetails),
				next(StepSocialProtection, FieldGrantDetails),
			},
			Back: []BackRule{back(StepCertificate)},
		},
		{
			Step:    StepGrantDetails,
			Kind:    KindFreeText,
			Field:   FieldGrantDetails,
			Forward: []Rule{next(StepSocialProtection)},
			Back:    []BackRule{back(StepGrant)},
		},
		{
			Step:    StepSocialProtection,
			Kind:    KindYesNo,
			Field:   FieldSocialProtection,
			Forward: []Rule{next(StepIronBook)},
			Back:    []BackRule{back(StepGrant)},
		},
		{
			Step:    StepIronBook,
			Kind:    KindYesNo,
			Field:   FieldIronBook,
			Forward: []Rule{next(StepYouthBook)},
			Back:    []BackRule{back(StepSocialProtection)},
		},
		{
			Step:    StepYouthBook,
			Kind:    KindYesNo,
			Field:   FieldYouthBook,
			Forward: []Rule{next(StepFatherAlive)},
			Back:    []BackRule{back(StepIronBook)},
		},
		{
			Step:  StepFatherAlive,
			Kind:  KindYesNo,
			Field: FieldFatherAlive,
			Forward: []Rule{
				when(yes(FieldFatherAlive), StepFatherName),
				next(StepMotherAlive, FieldFatherName, FieldFatherPhone),
			},
			Back: []BackRule{back(StepYouthBook)},
		},
		{
			Step:    StepFatherName,
			Kind:    KindFreeText,
			Field:   FieldFatherName,
			Forward: []Rule{next(StepFatherPhone)},
			Back:    []BackRule{back(StepFatherAlive)},
		},
		{
			Step:    StepFatherPhone,
			Kind:    KindFreeText,
			Field:   FieldFatherPhone,
			Forward: []Rule{next(StepMotherAlive)},
			Back:    []BackRule{back(StepFatherName)},
		},
		{
			Step:  StepMotherAlive,
			Kind:  KindYesNo,
			Field: FieldMotherAlive,
			Forward: []Rule{
				when(yes(FieldMotherAlive), StepMotherName),
				when(all(no(FieldMotherAlive), yes(FieldFatherAlive)), StepParentsTogether, FieldMotherName, FieldMotherPhone),
				next(StepLivingType, FieldMotherName, FieldMotherPhone, FieldParentsTogether),
			},
			Back: []BackRule{
				backWhen(yes(FieldFatherAlive), StepFatherPhone),
				back(StepFatherAlive),
			},
		},
		{
			Step:    StepMotherName,
			Kind:    KindFreeText,
			Field:   FieldMotherName,
			Forward: []Rule{next(StepMotherPhone)},
			Back:    []BackRule{back(StepMotherAlive)},
		},
		{
			Step:  StepMotherPhone,
			Kind:  KindFreeText,
			Field: FieldMotherPhone,
			Forward: []Rule{
				when(yes(FieldFatherAlive), StepParentsTogether),
				next(StepLivingType, FieldParentsTogether),
			},
			Back: []BackRule{back(StepMotherName)},
		},
		{
			Step:    StepParentsTogether,
			Kind:    KindYesNo,
			Field:   FieldParentsTogether,
			Forward: []Rule{next(StepLivingType)},
			Back: []BackRule{
				backWhen(yes(FieldMotherAlive), StepMotherPhone),
				back(StepMotherAlive),
			},
		},
		{
			Step:    StepLivingType,
			Kind:    KindChoiceSet,
			Field:   FieldLivingType,
			Choices: LivingTypes,
			Forward: []Rule{
				when(is(FieldLivingType, LivingTTJ), StepDormitory),
				when(is(FieldLivingType, LivingRent), StepRentAddress, FieldTTJLocation),
				next(StepWorking, withTTJ(rentFields...)...),
			},
			Back: []BackRule{
				backWhen(yes(FieldFatherAlive), StepParentsTogether),
				backWhen(yes(FieldMotherAlive), StepMotherPhone),
				back(StepMotherAlive),
			},
		},
		{
			Step:    StepDormitory,
			Kind:    KindChoiceSet,
			Field:   FieldTTJLocation,
			Choices: Dormitories,
			Forward: []Rule{next(StepWorking, rentFields...)},
			Back:    []BackRule{back(StepLivingType)},
		},
		{
			Step:    StepRentAddress,
			Kind:    KindFreeText,
			Field:   FieldRentAddress,
			Forward: []Rule{next(StepRentLocation)},
			Back:    []BackRule{back(StepLivingType)},
		},
		{
			Step:    StepRentLocation,
			Kind:    KindLocation,
			Field:   FieldRentLocation,
			Forward: []Rule{next(StepRentOwner)},
			Back:    []BackRule{back(StepRentAddress)},
		},
		{
			Step:    StepRentOwner,
			Kind:    KindFreeText,
			Field:   FieldRentOwner,
			Forward: []Rule{next(StepWorking)},
			Back:    []BackRule{back(StepRentLocation)},
		},
		{
			Step:    StepWorking,
			Kind:    KindYesNo,
			Field:   FieldIsWorking,
			Forward: []Rule{when(yes(FieldIsWorking), StepWorkplace), next(StepMarried, FieldWorkplace)},
			Back: []BackRule{
				backWhen(is(FieldLivingType, LivingRent), StepRentOwner),
				backWhen(is(FieldLivingType, LivingTTJ), StepDormitory),
				back(StepLivingType),
			},
		},
		{
			Step:    StepWorkplace,
			Kind:    KindFreeText,
			Field:   FieldWorkplace,
			Forward: []Rule{next(StepMarried)},
			Back:    []BackRule{back(StepWorking)},
		},
		{
			Step:    StepMarried,
			Kind:    KindYesNo,
			Field:   FieldIsMarried,
			Forward: []Rule{next(StepForeignPassport)},
			Back: []BackRule{
				backWhen(yes(FieldIsWorking), StepWorkplace),
				back(StepWorking),
			},
		},
		{
			Step:    StepForeignPassport,
			Kind:    KindYesNo,
			Field:   FieldHasForeignPassport,
			Forward: []Rule{next(StepSocialChannels)},
			Back:    []BackRule{back(StepMarried)},
		},
		{
			Step:  StepSocialChannels,
			Kind:  KindYesNo,
			Field: FieldHasSocialChannels,
			Forward: []Rule{
				when(yes(FieldHasSocialChannels), StepSocialLinks),
				next(StepCompleted, FieldSocialLinks),
			},
			Back: []BackRule{back(StepForeignPassport)},
		},
		{
			Step:    StepSocialLinks,
			Kind:    KindFreeText,
			Field:   FieldSocialLinks,
			Forward: []Rule{next(StepCompleted)},
			Back:    []BackRule{back(StepSocialChannels)},
		},
		{
			Step: StepCompleted,
			Back: []BackRule{back(StepSocialChannels)},
		},
	}
}
