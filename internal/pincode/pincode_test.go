package pincode

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"OCLAdmin/internal/apitest"
	"OCLAdmin/internal/apperr"
	"OCLAdmin/internal/auth"
	"OCLAdmin/internal/authz"
	"OCLAdmin/pkg/pagination"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"
)

type memoryStore struct {
	mu      sync.Mutex
	items   []*PincodeArea
	inserts int
	// createErr is returned by Create instead of storing the record.
	createErr error
}

func (m *memoryStore) match(p *PincodeArea, f Filter) bool {
	has := func(s, sub string) bool { return strings.Contains(strings.ToLower(s), strings.ToLower(sub)) }
	if f.Search != "" {
		n, numeric := ParseNumber(f.Search)
		if !has(p.AreaName, f.Search) && !has(p.CityName, f.Search) && !has(p.StateName, f.Search) &&
			!has(p.DistrictName, f.Search) && !(numeric && p.Pincode == n) {
			return false
		}
	}
	return (f.State == "" || has(p.StateName, f.State)) && (f.City == "" || has(p.CityName, f.City))
}

func (m *memoryStore) matching(f Filter) []*PincodeArea {
	var out []*PincodeArea
	for _, p := range m.items {
		if m.match(p, f) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Pincode < out[j].Pincode })
	return out
}

func (m *memoryStore) List(_ context.Context, f Filter, page pagination.Page) ([]*PincodeArea, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.matching(f)
	start := int(page.Skip())
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (m *memoryStore) Export(_ context.Context, f Filter) ([]*PincodeArea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matching(f), nil
}

func (m *memoryStore) FindByID(_ context.Context, id primitive.ObjectID) (*PincodeArea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) FindTriple(_ context.Context, pincode int, area, city string, exclude primitive.ObjectID) (*PincodeArea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if p.Pincode == pincode && p.AreaName == area && p.CityName == city && p.ID != exclude {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) Create(_ context.Context, p *PincodeArea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	p.ID = primitive.NewObjectID()
	cp := *p
	m.items = append(m.items, &cp)
	m.inserts++
	return nil
}

func (m *memoryStore) Replace(_ context.Context, p *PincodeArea) (*PincodeArea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.items {
		if existing.ID == p.ID {
			cp := *p
			m.items[i] = &cp
			out := cp
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) Delete(_ context.Context, id primitive.ObjectID) (*PincodeArea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.items {
		if p.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return p, nil
		}
	}
	return nil, nil
}

var actor = &auth.Admin{Email: "admin@ocl.com", Role: authz.RoleSuperAdmin}

func num(n int) *Number {
	v := Number(n)
	return &v
}

func TestNumberAcceptsStringOrNumber(t *testing.T) {
	var cmd CreateCommand
	if err := json.Unmarshal([]byte(`{"pincode":"560001"}`), &cmd); err != nil {
		t.Fatal(err)
	}
	if *cmd.Pincode != 560001 {
		t.Fatalf("expected 560001, got %d", *cmd.Pincode)
	}
	if err := json.Unmarshal([]byte(`{"pincode":110001}`), &cmd); err != nil || *cmd.Pincode != 110001 {
		t.Fatalf("expected 110001, got %v, %v", cmd.Pincode, err)
	}
	if err := json.Unmarshal([]byte(`{"pincode":"56A"}`), &cmd); err == nil {
		t.Fatal("expected error for non-numeric pincode")
	}
}

func TestCreate(t *testing.T) {
	s := &memoryStore{}
	svc := NewPincodeService(s, zap.NewNop())
	ctx := context.Background()

	p, err := svc.Create(ctx, actor, CreateCommand{Pincode: num(560001), AreaName: " MG Road ", CityName: "Bengaluru", StateName: "Karnataka"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.AreaName != "MG Road" || p.DistrictName != "Bengaluru" || p.Serviceable {
		t.Fatalf("unexpected record %+v", p)
	}

	_, err = svc.Create(ctx, actor, CreateCommand{Pincode: num(560001), AreaName: "MG Road", CityName: "Bengaluru", StateName: "KA"})
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind != apperr.KindConflict || appErr.Message != "This pincode area combination already exists." {
		t.Fatalf("expected duplicate conflict, got %v", err)
	}
	if s.inserts != 1 {
		t.Fatalf("duplicate must not be inserted, got %d inserts", s.inserts)
	}

	_, err = svc.Create(ctx, actor, CreateCommand{Pincode: num(560002), AreaName: "X"})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("missing fields: expected validation, got %v", err)
	}
}

func TestCreateLosingUniqueIndexRace(t *testing.T) {
	s := &memoryStore{createErr: ErrDuplicate}
	svc := NewPincodeService(s, zap.NewNop())

	_, err := svc.Create(context.Background(), actor, CreateCommand{Pincode: num(560001), AreaName: "MG Road", CityName: "Bengaluru", StateName: "Karnataka"})
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind != apperr.KindConflict || appErr.Message != "This pincode area combination already exists." {
		t.Fatalf("expected duplicate conflict from the store, got %v", err)
	}
}

func TestPincodeRepositoryMapsDuplicateKey(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: ocl.pincodeareas index: pincode_area_city_unique",
		}))
		repo := NewPincodeRepository(mt.DB)

		err := repo.Create(context.Background(), &PincodeArea{Pincode: 560001, AreaName: "MG Road", CityName: "Bengaluru"})
		if !errors.Is(err, ErrDuplicate) {
			mt.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})
}

func TestUpdateChecksTriple(t *testing.T) {
	s := &memoryStore{}
	svc := NewPincodeService(s, zap.NewNop())
	ctx := context.Background()
	a, _ := svc.Create(ctx, actor, CreateCommand{Pincode: num(1), AreaName: "A", CityName: "C", StateName: "S"})
	b, _ := svc.Create(ctx, actor, CreateCommand{Pincode: num(2), AreaName: "B", CityName: "C", StateName: "S"})

	area := "A"
	_, err := svc.Update(ctx, actor, b.ID.Hex(), UpdateCommand{Pincode: num(1), AreaName: &area})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	district, serviceable := "  Urban ", true
	updated, err := svc.Update(ctx, actor, a.ID.Hex(), UpdateCommand{Distrcitname: &district, Serviceable: &serviceable})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.DistrictName != "Urban" || !updated.Serviceable || updated.Pincode != 1 {
		t.Fatalf("unexpected update %+v", updated)
	}

	empty := " "
	if _, err := svc.Update(ctx, actor, a.ID.Hex(), UpdateCommand{CityName: &empty}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("blank city: expected validation, got %v", err)
	}
	if _, err := svc.Update(ctx, actor, primitive.NewObjectID().Hex(), UpdateCommand{}); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBuildFilter(t *testing.T) {
	f := buildFilter(Filter{Search: "560001", State: "kar"})
	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 5 {
		t.Fatalf("expected four text clauses plus pincode, got %v", f["$or"])
	}
	if last := or[4].(bson.M); last["pincode"] != 560001 {
		t.Fatalf("expected numeric pincode clause, got %v", last)
	}
	if _, ok := f["statename"].(primitive.Regex); !ok {
		t.Fatal("expected state regex")
	}

	f = buildFilter(Filter{Search: "a.b"})
	if or := f["$or"].(bson.A); len(or) != 4 {
		t.Fatalf("non-numeric search must not match pincode, got %v", or)
	}
}

func TestExportRoundTripsThroughImport(t *testing.T) {
	items := []*PincodeArea{
		{Pincode: 560001, AreaName: "MG Road", CityName: "Bengaluru", DistrictName: "Bengaluru Urban", StateName: "Karnataka", Serviceable: true},
		{Pincode: 110001, AreaName: "Connaught Place", CityName: "Delhi", DistrictName: "Central", StateName: "Delhi"},
	}

	var csvBuf bytes.Buffer
	if err := WriteCSV(&csvBuf, items); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&csvBuf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 || records[0][0] != "Pincode" || records[1][5] != "Yes" || records[2][5] != "No" {
		t.Fatalf("unexpected csv %v", records)
	}

	var xlsx bytes.Buffer
	if err := WriteXLSX(&xlsx, items); err != nil {
		t.Fatal(err)
	}
	rows, err := ReadXLSX(&xlsx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row.Err != nil {
			t.Fatalf("row %d: %v", i, row.Err)
		}
		if *row.Area != *items[i] {
			t.Fatalf("row %d: expected %+v, got %+v", i, items[i], row.Area)
		}
	}
}

func TestImportSkipsDuplicates(t *testing.T) {
	s := &memoryStore{}
	svc := NewPincodeService(s, zap.NewNop())
	ctx := context.Background()
	if _, err := svc.Create(ctx, actor, CreateCommand{Pincode: num(560001), AreaName: "MG Road", CityName: "Bengaluru", StateName: "Karnataka"}); err != nil {
		t.Fatal(err)
	}

	var xlsx bytes.Buffer
	if err := WriteXLSX(&xlsx, []*PincodeArea{
		{Pincode: 560001, AreaName: "MG Road", CityName: "Bengaluru", StateName: "Karnataka"},
		{Pincode: 560002, AreaName: "Indiranagar", CityName: "Bengaluru", StateName: "Karnataka"},
	}); err != nil {
		t.Fatal(err)
	}
	result, err := svc.Import(ctx, actor, &xlsx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Inserted != 1 || result.Skipped != 1 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}

	if _, err := svc.Import(ctx, actor, strings.NewReader("not a spreadsheet")); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation for garbage upload, got %v", err)
	}
}

func TestHandlers(t *testing.T) {
	s := &memoryStore{}
	h := NewPincodeHandler(NewPincodeService(s, zap.NewNop()))
	e := apitest.NewEcho()
	as := apitest.As(&auth.Principal{Admin: actor})
	e.GET("/api/admin/pincodes", h.List, as)
	e.GET("/api/admin/pincodes/export", h.Export, as)
	e.POST("/api/admin/pincodes", h.Create, as)
	e.POST("/api/admin/pincodes/import", h.Import, as)
	e.DELETE("/api/admin/pincodes/:id", h.Delete, as)

	body := map[string]interface{}{"pincode": "560001", "areaname": "MG Road", "cityname": "Bengaluru", "statename": "Karnataka"}
	rr, created := apitest.Do(t, e, apitest.Request{Method: http.MethodPost, Path: "/api/admin/pincodes", Body: body})
	apitest.Expect(t, rr, http.StatusCreated)
	var p PincodeArea
	created.DecodeData(t, &p)

	rr, _ = apitest.Do(t, e, apitest.Request{Method: http.MethodPost, Path: "/api/admin/pincodes", Body: body})
	apitest.Expect(t, rr, http.StatusConflict)
	if len(s.items) != 1 {
		t.Fatalf("expected one stored record, got %d", len(s.items))
	}

	rr, _ = apitest.Do(t, e, apitest.Request{Method: http.MethodPost, Path: "/api/admin/pincodes", Body: `{"pincode":1,"bogus":true}`})
	apitest.Expect(t, rr, http.StatusBadRequest)

	rr, list := apitest.Do(t, e, apitest.Request{Method: http.MethodGet, Path: "/api/admin/pincodes?search=560001"})
	apitest.Expect(t, rr, http.StatusOK)
	if list.Search == nil || *list.Search != "560001" || list.Pagination.TotalCount != 1 {
		t.Fatalf("unexpected list envelope %+v", list)
	}

	raw := apitest.Raw(t, e, apitest.Request{Method: http.MethodGet, Path: "/api/admin/pincodes/export?format=csv"})
	apitest.Expect(t, raw, http.StatusOK)
	if !strings.HasPrefix(raw.Body.String(), "Pincode,Area,City") {
		t.Fatalf("unexpected csv body %q", raw.Body.String())
	}
	if cd := raw.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "pincodes_export.csv") {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	rr, _ = apitest.Do(t, e, apitest.Request{Method: http.MethodGet, Path: "/api/admin/pincodes/export?format=pdf"})
	apitest.Expect(t, rr, http.StatusBadRequest)

	var upload bytes.Buffer
	mw := multipart.NewWriter(&upload)
	fw, _ := mw.CreateFormFile("file", "pincodes.xlsx")
	if err := WriteXLSX(fw, []*PincodeArea{{Pincode: 400001, AreaName: "Fort", CityName: "Mumbai", StateName: "Maharashtra"}}); err != nil {
		t.Fatal(err)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/pincodes/import", &upload)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	apitest.Expect(t, rec, http.StatusOK)
	if len(s.items) != 2 {
		t.Fatalf("expected import to add a record, got %d", len(s.items))
	}

	rr, _ = apitest.Do(t, e, apitest.Request{Method: http.MethodDelete, Path: "/api/admin/pincodes/" + p.ID.Hex()})
	apitest.Expect(t, rr, http.StatusOK)
	rr, _ = apitest.Do(t, e, apitest.Request{Method: http.MethodDelete, Path: "/api/admin/pincodes/" + p.ID.Hex()})
	apitest.Expect(t, rr, http.StatusNotFound)
}
