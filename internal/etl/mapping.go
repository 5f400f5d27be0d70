package etl

import (
	"fmt"
	"io"
	"strings"

	"github.com/hjs-etl/internal/geo"
	import_pkg "github.com/hjs-etl/internal/import"
	"github.com/hjs-etl/internal/normalize"
)

// Column widths of the warehouse schema.
const (
	phoneWidth     = 20
	mobileWidth    = 50
	extensionWidth = 20
	docTypeWidth   = 10
	documentWidth  = 20
	codeWidth      = 5
	placeCodeWidth = 20
)

// recordSource adapts a CSV reader to Source[T] through a mapping function.
type recordSource[T any] struct {
	csv   *import_pkg.CSVReader
	mapFn func(import_pkg.Record) (T, error)
}

func (s *recordSource[T]) Next() (T, error) {
	rec, err := s.csv.Next()
	if err != nil {
		var zero T
		return zero, err
	}
	return s.mapFn(rec)
}

// sliceSource serves rows already in memory.
type sliceSource[T any] struct {
	rows []T
	i    int
}

func (s *sliceSource[T]) Next() (T, error) {
	if s.i >= len(s.rows) {
		var zero T
		return zero, io.EOF
	}
	s.i++
	return s.rows[s.i-1], nil
}

// mapCompany maps a row of EMPRESAS.csv. Department and municipality codes
// are zero-padded to 2 and 3 digits and joined into the 5-digit DANE code.
func mapCompany(rec import_pkg.Record) (Company, error) {
	id := rec.Get("company_id")
	if normalize.IsNull(id) {
		return Company{}, import_pkg.ErrSkipRow
	}

	c := Company{
		ID:                  id,
		NIT:                 rec.Optional("identification_number"),
		LegalName:           rec.Optional("legal_name"),
		LegalRepresentative: rec.Optional("legal_representative"),
		CompanyType:         rec.Optional("company_type"),
		Status:              rec.Optional("status"),
		FoundedOn:           normalize.Date(rec.Get("created_time")),
		Phone:               normalize.Phone(rec.Get("phone_number"), phoneWidth),
		Extension:           rec.Optional("phone_extension"),
		Address:             rec.Optional("address"),
	}

	dept, muni := rec.Get("department_code"), rec.Get("municipality_code")
	switch {
	case rec.Has("department_code") && !normalize.IsNull(dept) && !normalize.IsNull(muni):
		code := normalize.PadCode(dept, 2) + normalize.PadCode(muni, 3)
		c.MunicipalityCode = &code
	case !rec.Has("department_code"):
		c.MunicipalityCode = rec.Optional("municipality_code")
	}
	return c, nil
}

// mapEmployee maps a row of EMPLEADOS_EMPRESAS.csv. Rows without a
// nominated_citizen_id carry no employee and are skipped.
func mapEmployee(rec import_pkg.Record) (Employee, error) {
	id := rec.Get("nominated_citizen_id")
	if normalize.IsNull(id) {
		return Employee{}, import_pkg.ErrSkipRow
	}

	parts := make([]string, 0, 4)
	for _, col := range []string{"first_name_one", "first_name_two", "last_name_one", "last_name_two"} {
		if v := rec.Get(col); !normalize.IsNull(v) {
			parts = append(parts, v)
		}
	}

	e := Employee{
		ID:             id,
		Document:       normalize.Optional(normalize.Document(rec.Get("identification_number"))),
		DocumentType:   "CC",
		CompanyID:      rec.Optional("company_id"),
		FirstName:      rec.Optional("first_name_one"),
		MiddleName:     rec.Optional("first_name_two"),
		LastName:       rec.Optional("last_name_one"),
		SecondLastName: rec.Optional("last_name_two"),
		FullName:       strings.Join(strings.Fields(strings.Join(parts, " ")), " "),
		BirthDate:      normalize.Date(rec.Get("birthday")),
		EducationLevel: rec.Optional("education_level"),
		Email:          rec.Optional("email"),
		Address:        rec.Optional("address"),
		DeptCode:       rec.Optional("department_code"),
		MuniCode:       rec.Optional("municipality_code"),
		ZoneCode:       rec.Optional("zone_code"),
		PlaceCode:      rec.Optional("place_code"),
	}
	if t := rec.Get("identification_type"); !normalize.IsNull(t) {
		e.DocumentType = normalize.Truncate(t, docTypeWidth)
	}
	if sex := rec.Get("sex"); !normalize.IsNull(sex) {
		s := normalize.Truncate(strings.ToUpper(sex), 1)
		e.Sex = &s
	}
	mobile := rec.Get("mobile_number")
	if normalize.IsNull(mobile) {
		mobile = rec.Get("phone_number")
	}
	e.Mobile = normalize.Phone(mobile, mobileWidth)
	return e, nil
}

// mapLegalRep maps a row of REP_LEGAL_EMPRESA.csv.
func mapLegalRep(rec import_pkg.Record) (LegalRep, error) {
	id := rec.Get("company_contact_id")
	if normalize.IsNull(id) {
		return LegalRep{}, import_pkg.ErrSkipRow
	}
	companyID := rec.Get("company_id")
	if normalize.IsNull(companyID) {
		companyID = ""
	}
	return LegalRep{
		ContactID:   id,
		Name:        rec.Optional("name"),
		Role:        rec.Optional("company_role"),
		Phone:       normalize.Phone(rec.Get("phone_number"), mobileWidth),
		Extension:   normalize.Phone(rec.Get("phone_extension"), extensionWidth),
		Mobile:      normalize.Phone(rec.Get("mobile_number"), mobileWidth),
		Email:       rec.Optional("email"),
		CompanyID:   companyID,
		Document:    normalize.Optional(normalize.Document(rec.Get("document"))),
		CreatedOn:   normalize.Date(rec.Get("created_time")),
		DiscardedOn: normalize.Date(rec.Get("discarted_time")),
	}, nil
}

// mapCensus maps a row of CENSO.csv. A value wider than its staging column
// rejects the row instead of failing the COPY chunk.
func mapCensus(rec import_pkg.Record) (CensusRecord, error) {
	doc := normalize.Document(rec.Get("identification_number"))
	if doc == "" {
		return CensusRecord{}, import_pkg.ErrSkipRow
	}
	if len(doc) > documentWidth {
		return CensusRecord{}, &import_pkg.RowError{Line: rec.Line, Key: doc, Err: fmt.Errorf("document longer than %d digits", documentWidth)}
	}
	codes := []struct {
		column string
		width  int
	}{
		{"department_code", codeWidth},
		{"municipality_code", codeWidth},
		{"zone_code", codeWidth},
		{"place_code", placeCodeWidth},
	}
	for _, c := range codes {
		if v := rec.Get(c.column); !normalize.IsNull(v) && len(v) > c.width {
			return CensusRecord{}, &import_pkg.RowError{Line: rec.Line, Key: doc, Err: fmt.Errorf("%s %q longer than %d", c.column, v, c.width)}
		}
	}
	return CensusRecord{
		Document:     doc,
		DocumentType: normalize.OptionalMax(rec.Get("identification_type"), docTypeWidth),
		DeptCode:     rec.Optional("department_code"),
		MuniCode:     rec.Optional("municipality_code"),
		ZoneCode:     rec.Optional("zone_code"),
		PlaceCode:    rec.Optional("place_code"),
		RegisteredOn: normalize.Date(rec.Get("register_date")),
	}, nil
}

// mapContact maps a contacts sheet row and resolves its municipality.
func mapContact(table *import_pkg.Table, row []string, ix *geo.MunicipalityIndex, tally *geo.Tally) (Contact, error) {
	cols := table.Columns
	doc := normalize.Document(cols.Get(row, "document"))
	if doc == "" {
		return Contact{}, import_pkg.ErrSkipRow
	}

	c := Contact{
		Document:         doc,
		FullName:         normalize.Optional(cols.Get(row, "full_name")),
		Contact:          normalize.Phone(cols.Get(row, "contact"), mobileWidth),
		Address:          normalize.Optional(cols.Get(row, "address")),
		Neighborhood:     normalize.Optional(cols.Get(row, "neighborhood")),
		MunicipalityText: normalize.Optional(cols.Get(row, "municipality")),
	}
	if code, ok := tally.Record(ix, cols.Get(row, "municipality")); ok {
		c.DeptCode = &code.DeptCode
		c.MuniCode = &code.MuniCode
	}
	return c, nil
}

// parseCandidates maps a candidates sheet. party is the sheet name.
func parseCandidates(table *import_pkg.Table, party string) ([]Candidate, int) {
	cols := table.Columns
	var out []Candidate
	skipped := 0
	for _, row := range table.Rows {
		name := table.Name(row)
		if name == "" {
			skipped++
			continue
		}
		out = append(out, Candidate{
			Name:         name,
			Party:        party,
			Votes:        normalize.Count(cols.Get(row, "votes")),
			SharedAds:    normalize.Optional(cols.Get(row, "shared_ads")),
			Resumes:      normalize.Count(cols.Get(row, "resumes")),
			Verified:     normalize.Optional(cols.Get(row, "verified")),
			LadiesFree:   normalize.Count(cols.Get(row, "ladies_free")),
			BingoTickets: normalize.Count(cols.Get(row, "bingo_tickets")),
			Banners:      normalize.Count(cols.Get(row, "banners")),
			Meeting:      normalize.Optional(cols.Get(row, "meeting")),
		})
	}
	return out, skipped
}

// parseLeaders maps the leaders sheet.
func parseLeaders(table *import_pkg.Table) ([]Leader, int) {
	cols := table.Columns
	var out []Leader
	skipped := 0
	for _, row := range table.Rows {
		name := table.Name(row)
		if name == "" {
			skipped++
			continue
		}
		out = append(out, Leader{
			Name:         name,
			VoteGoal:     normalize.Count(cols.Get(row, "vote_goal")),
			Verified:     normalize.Optional(cols.Get(row, "verified")),
			Resumes:      normalize.Count(cols.Get(row, "resumes")),
			BingoTickets: normalize.Count(cols.Get(row, "bingo_tickets")),
			LadiesFree:   normalize.Count(cols.Get(row, "ladies_free")),
			Banners:      normalize.Count(cols.Get(row, "banners")),
			Meeting:      normalize.Optional(cols.Get(row, "meeting")),
		})
	}
	return out, skipped
}
