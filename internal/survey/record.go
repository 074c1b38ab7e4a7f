package survey

// Answer field names. They double as column names of survey_responses.
const (
	FieldUniqueID           = "unique_id"
	FieldFullname           = "fullname"
	FieldGroupName          = "group_name"
	FieldSubjectPhone       = "db_phone"
	FieldPhone              = "phone"
	FieldPermanentAddress   = "permanent_address"
	FieldPermanentLocation  = "permanent_location"
	FieldPreviousEducation  = "previous_education"
	FieldDocumentNumber     = "document_number"
	FieldHasAchievements    = "has_achievements"
	FieldAchievements       = "achievements"
	FieldHasCertificate     = "has_certificate"
	FieldCertificateType    = "certificate_type"
	FieldCertificateDetails = "certificate_details"
	FieldCertificateFile    = "certificate_file"
	FieldHasGrant           = "has_grant"
	FieldGrantDetails       = "grant_details"
	FieldSocialProtection   = "social_protection"
	FieldIronBook           = "iron_book"
	FieldYouthBook          = "youth_book"
	FieldFatherName         = "father_name"
	FieldFatherAlive        = "father_alive"
	FieldFatherPhone        = "father_phone"
	FieldMotherName         = "mother_name"
	FieldMotherAlive        = "mother_alive"
	FieldMotherPhone        = "mother_phone"
	FieldParentsTogether    = "parents_together"
	FieldLivingType         = "living_type"
	FieldTTJLocation        = "ttj_location"
	FieldRentAddress        = "rent_address"
	FieldRentLocation       = "rent_location"
	FieldRentOwner          = "rent_owner"
	FieldIsWorking          = "is_working"
	FieldWorkplace          = "workplace"
	FieldIsMarried          = "is_married"
	FieldHasForeignPassport = "has_foreign_passport"
	FieldHasSocialChannels  = "has_social_channels"
	FieldSocialLinks        = "social_links"
)

// Answers is the accumulated field map of one session.
type Answers map[string]string

// Get returns the value of a field or "" when it was never written.
func (a Answers) Get(field string) string {
	if a == nil {
		return ""
	}
	return a[field]
}

// Clone returns an independent copy.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Merge writes values into a, allocating when a is nil, and returns the result.
func (a Answers) Merge(values map[string]string) Answers {
	if a == nil {
		a = make(Answers, len(values))
	}
	for k, v := range values {
		a[k] = v
	}
	return a
}

// Subject is the pre-imported student a session is bound to.
type Subject struct {
	UniqueID  string
	Fullname  string
	GroupName string
	Phone     string
}

// Fields returns the answer entries that bind s to a session.
func (s Subject) Fields() map[string]string {
	return map[string]string{
		FieldUniqueID:     s.UniqueID,
		FieldFullname:     s.Fullname,
		FieldGroupName:    s.GroupName,
		FieldSubjectPhone: s.Phone,
	}
}

// Record is one completed questionnaire as stored in survey_responses.
type Record struct {
	UserID             int64  `db:"user_id"`
	UniqueID           string `db:"unique_id"`
	Fullname           string `db:"fullname"`
	GroupName          string `db:"group_name"`
	Phone              string `db:"phone"`
	PermanentAddress   string `db:"permanent_address"`
	PermanentLocation  string `db:"permanent_location"`
	PreviousEducation  string `db:"previous_education"`
	DocumentNumber     string `db:"document_number"`
	HasAchievements    string `db:"has_achievements"`
	Achievements       string `db:"achievements"`
	HasCertificate     string `db:"has_certificate"`
	CertificateType    string `db:"certificate_type"`
	CertificateDetails string `db:"certificate_details"`
	CertificateFile    string `db:"certificate_file"`
	HasGrant           string `db:"has_grant"`
	GrantDetails       string `db:"grant_details"`
	SocialProtection   string `db:"social_protection"`
	IronBook           string `db:"iron_book"`
	YouthBook          string `db:"youth_book"`
	FatherName         string `db:"father_name"`
	FatherAlive        string `db:"father_alive"`
	FatherPhone        string `db:"father_phone"`
	MotherName         string `db:"mother_name"`
	MotherAlive        string `db:"mother_alive"`
	MotherPhone        string `db:"mother_phone"`
	ParentsTogether    string `db:"parents_together"`
	LivingType         string `db:"living_type"`
	TTJLocation        string `db:"ttj_location"`
	RentAddress        string `db:"rent_address"`
	RentLocation       string `db:"rent_location"`
	RentOwner          string `db:"rent_owner"`
	IsWorking          string `db:"is_working"`
	Workplace          string `db:"workplace"`
	IsMarried          string `db:"is_married"`
	HasForeignPassport string `db:"has_foreign_passport"`
	HasSocialChannels  string `db:"has_social_channels"`
	SocialLinks        string `db:"social_links"`
}

// RecordFields lists the answer columns of Record in table order (user_id excluded).
var RecordFields = []string{
	FieldUniqueID, FieldFullname, FieldGroupName,
	FieldPhone, FieldPermanentAddress, FieldPermanentLocation, FieldPreviousEducation, FieldDocumentNumber,
	FieldHasAchievements, FieldAchievements,
	FieldHasCertificate, FieldCertificateType, FieldCertificateDetails, FieldCertificateFile,
	FieldHasGrant, FieldGrantDetails,
	FieldSocialProtection, FieldIronBook, FieldYouthBook,
	FieldFatherName, FieldFatherAlive, FieldFatherPhone,
	FieldMotherName, FieldMotherAlive, FieldMotherPhone, FieldParentsTogether,
	FieldLivingType, FieldTTJLocation, FieldRentAddress, FieldRentLocation, FieldRentOwner,
	FieldIsWorking, FieldWorkplace,
	FieldIsMarried,
	FieldHasForeignPassport, FieldHasSocialChannels, FieldSocialLinks,
}

// BuildRecord flattens answers into a Record. Fields that were never written become "".
func BuildRecord(userID int64, a Answers) Record {
	return Record{
		UserID:             userID,
		UniqueID:           a.Get(FieldUniqueID),
		Fullname:           a.Get(FieldFullname),
		GroupName:          a.Get(FieldGroupName),
		Phone:              a.Get(FieldPhone),
		PermanentAddress:   a.Get(FieldPermanentAddress),
		PermanentLocation:  a.Get(FieldPermanentLocation),
		PreviousEducation:  a.Get(FieldPreviousEducation),
		DocumentNumber:     a.Get(FieldDocumentNumber),
		HasAchievements:    a.Get(FieldHasAchievements),
		Achievements:       a.Get(FieldAchievements),
		HasCertificate:     a.Get(FieldHasCertificate),
		CertificateType:    a.Get(FieldCertificateType),
		CertificateDetails: a.Get(FieldCertificateDetails),
		CertificateFile:    a.Get(FieldCertificateFile),
		HasGrant:           a.Get(FieldHasGrant),
		GrantDetails:       a.Get(FieldGrantDetails),
		SocialProtection:   a.Get(FieldSocialProtection),
		IronBook:           a.Get(FieldIronBook),
		YouthBook:          a.Get(FieldYouthBook),
		FatherName:         a.Get(FieldFatherName),
		FatherAlive:        a.Get(FieldFatherAlive),
		FatherPhone:        a.Get(FieldFatherPhone),
		MotherName:         a.Get(FieldMotherName),
		MotherAlive:        a.Get(FieldMotherAlive),
		MotherPhone:        a.Get(FieldMotherPhone),
		ParentsTogether:    a.Get(FieldParentsTogether),
		LivingType:         a.Get(FieldLivingType),
		TTJLocation:        a.Get(FieldTTJLocation),
		RentAddress:        a.Get(FieldRentAddress),
		RentLocation:       a.Get(FieldRentLocation),
		RentOwner:          a.Get(FieldRentOwner),
		IsWorking:          a.Get(FieldIsWorking),
		Workplace:          a.Get(FieldWorkplace),
		IsMarried:          a.Get(FieldIsMarried),
		HasForeignPassport: a.Get(FieldHasForeignPassport),
		HasSocialChannels:  a.Get(FieldHasSocialChannels),
		SocialLinks:        a.Get(FieldSocialLinks),
	}
}

// Values returns the record as a field map keyed by RecordFields.
func (r Record) Values() map[string]string {
	return map[string]string{
		FieldUniqueID:           r.UniqueID,
		FieldFullname:           r.Fullname,
		FieldGroupName:          r.GroupName,
		FieldPhone:              r.Phone,
		FieldPermanentAddress:   r.PermanentAddress,
		FieldPermanentLocation:  r.PermanentLocation,
		FieldPreviousEducation:  r.PreviousEducation,
		FieldDocumentNumber:     r.DocumentNumber,
		FieldHasAchievements:    r.HasAchievements,
		FieldAchievements:       r.Achievements,
		FieldHasCertificate:     r.HasCertificate,
		FieldCertificateType:    r.CertificateType,
		FieldCertificateDetails: r.CertificateDetails,
		FieldCertificateFile:    r.CertificateFile,
		FieldHasGrant:           r.HasGrant,
		FieldGrantDetails:       r.GrantDetails,
		FieldSocialProtection:   r.SocialProtection,
		FieldIronBook:           r.IronBook,
		FieldYouthBook:          r.YouthBook,
		FieldFatherName:         r.FatherName,
		FieldFatherAlive:        r.FatherAlive,
		FieldFatherPhone:        r.FatherPhone,
		FieldMotherName:         r.MotherName,
		FieldMotherAlive:        r.MotherAlive,
		FieldMotherPhone:        r.MotherPhone,
		FieldParentsTogether:    r.ParentsTogether,
		FieldLivingType:         r.LivingType,
		FieldTTJLocation:        r.TTJLocation,
		FieldRentAddress:        r.RentAddress,
		FieldRentLocation:       r.RentLocation,
		FieldRentOwner:          r.RentOwner,
		FieldIsWorking:          r.IsWorking,
		FieldWorkplace:          r.Workplace,
		FieldIsMarried:          r.IsMarried,
		FieldHasForeignPassport: r.HasForeignPassport,
		FieldHasSocialChannels:  r.HasSocialChannels,
		FieldSocialLinks:        r.SocialLinks,
	}
}
