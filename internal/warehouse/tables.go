package warehouse

import (
	"strconv"

	"github.com/hjs-etl/internal/etl"
	"github.com/hjs-etl/internal/geo"
)

var placeTable = func() table {
	t := table{
		name: "dim_geo_place",
		columns: []string{
			"dept_code", "muni_code", "zone_code", "place_code",
			"dept_name", "muni_name", "place_name", "address", "zone_type",
			"table_count", "latitude", "longitude",
		},
		keys: []string{"dept_code", "muni_code", "zone_code", "place_code"},
	}
	t.update = t.nonKey()
	return t
}()

func placeValues(p geo.Place) []any {
	return []any{
		p.DeptCode, p.MuniCode, p.ZoneCode, p.PlaceCode,
		p.DeptName, p.MuniName, p.PlaceName, p.Address, p.ZoneType,
		p.TableCount, p.Latitude, p.Longitude,
	}
}

var companyTable = func() table {
	t := table{
		name: "core_company",
		columns: []string{
			"company_id", "nit", "legal_name", "legal_representative", "company_type",
			"status", "founded_on", "phone", "extension", "address", "municipality_code",
		},
		keys: []string{"company_id"},
	}
	t.update = t.nonKey()
	return t
}()

func companyValues(c etl.Company) []any {
	return []any{
		c.ID, c.NIT, c.LegalName, c.LegalRepresentative, c.CompanyType,
		c.Status, c.FoundedOn, c.Phone, c.Extension, c.Address, c.MunicipalityCode,
	}
}

// Employees refresh only their identity and employer on reload.
var employeeTable = table{
	name: "person_employee",
	columns: []string{
		"employee_id", "document", "document_type", "company_id",
		"first_name", "middle_name", "last_name", "second_last_name", "full_name",
		"sex", "birth_date", "education_level", "email", "mobile", "address",
		"dept_code", "muni_code", "zone_code", "place_code",
	},
	keys:   []string{"employee_id"},
	update: []string{"document", "full_name", "company_id"},
	touch:  "updated_at = CURRENT_TIMESTAMP",
}

func employeeValues(e etl.Employee) []any {
	return []any{
		e.ID, e.Document, e.DocumentType, e.CompanyID,
		e.FirstName, e.MiddleName, e.LastName, e.SecondLastName, e.FullName,
		e.Sex, e.BirthDate, e.EducationLevel, e.Email, e.Mobile, e.Address,
		e.DeptCode, e.MuniCode, e.ZoneCode, e.PlaceCode,
	}
}

var legalRepTable = table{
	name: "legal_representative_contact",
	columns: []string{
		"contact_id", "name", "role", "phone", "extension", "mobile", "email",
		"company_id", "document", "created_on", "discarded_on",
	},
	keys: []string{"contact_id"},
}

func legalRepValues(l etl.LegalRep) []any {
	return []any{
		l.ContactID, l.Name, l.Role, l.Phone, l.Extension, l.Mobile, l.Email,
		l.CompanyID, l.Document, l.CreatedOn, l.DiscardedOn,
	}
}

var contactTable = func() table {
	t := table{
		name: "person_contact",
		columns: []string{
			"document", "full_name", "contact", "address", "neighborhood",
			"municipality_text", "dept_code", "muni_code",
		},
		keys: []string{"document"},
	}
	t.update = t.nonKey()
	return t
}()

func contactValues(c etl.Contact) []any {
	return []any{
		c.Document, c.FullName, c.Contact, c.Address, c.Neighborhood,
		c.MunicipalityText, c.DeptCode, c.MuniCode,
	}
}

var relationTable = table{
	name:    "person_group_relation",
	columns: []string{"document", "group_id"},
	keys:    []string{"document", "group_id"},
}

func relationKey(r etl.GroupRelation) string {
	return r.Document + "|" + strconv.FormatInt(r.GroupID, 10)
}

func relationValues(r etl.GroupRelation) []any {
	return []any{r.Document, r.GroupID}
}
