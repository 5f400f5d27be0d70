package etl

import "time"

// Company is a row of core_company.
type Company struct {
	ID                  string
	NIT                 *string
	LegalName           *string
	LegalRepresentative *string
	CompanyType         *string
	Status              *string
	FoundedOn           *time.Time
	Phone               *string
	Extension           *string
	Address             *string
	MunicipalityCode    *string
}

// Employee is a row of person_employee.
type Employee struct {
	ID             string
	Document       *string
	DocumentType   string
	CompanyID      *string
	FirstName      *string
	MiddleName     *string
	LastName       *string
	SecondLastName *string
	FullName       string
	Sex            *string
	BirthDate      *time.Time
	EducationLevel *string
	Email          *string
	Mobile         *string
	Address        *string
	DeptCode       *string
	MuniCode       *string
	ZoneCode       *string
	PlaceCode      *string
}

// LegalRep is a row of legal_representative_contact.
type LegalRep struct {
	ContactID   string
	Name        *string
	Role        *string
	Phone       *string
	Extension   *string
	Mobile      *string
	Email       *string
	CompanyID   string
	Document    *string
	CreatedOn   *time.Time
	DiscardedOn *time.Time
}

// Contact is a row of person_contact. Municipality codes come from resolving
// MunicipalityText against the geographic dimension.
type Contact struct {
	Document         string
	FullName         *string
	Contact          *string
	Address          *string
	Neighborhood     *string
	MunicipalityText *string
	DeptCode         *string
	MuniCode         *string
}

// CensusRecord is a row of person_census.
type CensusRecord struct {
	Document     string
	DocumentType *string
	DeptCode     *string
	MuniCode     *string
	ZoneCode     *string
	PlaceCode    *string
	RegisteredOn *time.Time
}

// GroupRelation links a contact document to a group. GroupID is looked up from
// the group snapshot; it is zero when the group is unknown.
type GroupRelation struct {
	Document string
	Group    string
	GroupID  int64
}

// Candidate is a row of campaign_candidate.
type Candidate struct {
	Name         string
	Party        string
	Votes        int
	SharedAds    *string
	Resumes      int
	Verified     *string
	LadiesFree   int
	BingoTickets int
	Banners      int
	Meeting      *string
}

// Leader is a row of campaign_leader.
type Leader struct {
	Name         string
	VoteGoal     int
	Verified     *string
	Resumes      int
	BingoTickets int
	LadiesFree   int
	Banners      int
	Meeting      *string
}
