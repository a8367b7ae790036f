package directory

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medibook/medibook/internal/domain/identity"
	"github.com/medibook/medibook/internal/platform/httperr"
	"github.com/medibook/medibook/internal/platform/imagestore"
)

// -- Mock Provider Repository --

type mockProviderRepo struct {
	providers map[uuid.UUID]*Provider
}

func newMockProviderRepo() *mockProviderRepo {
	return &mockProviderRepo{providers: make(map[uuid.UUID]*Provider)}
}

func (m *mockProviderRepo) Create(_ context.Context, p *Provider) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.providers[p.ID] = p
	return nil
}

func (m *mockProviderRepo) GetByID(_ context.Context, id uuid.UUID) (*Provider, error) {
	p, ok := m.providers[id]
	if !ok {
		return nil, httperr.NotFoundf("provider not found")
	}
	return p, nil
}

func (m *mockProviderRepo) GetByAccountID(_ context.Context, accountID uuid.UUID) (*Provider, error) {
	for _, p := range m.providers {
		if p.AccountID == accountID {
			return p, nil
		}
	}
	return nil, httperr.NotFoundf("provider not found")
}

func (m *mockProviderRepo) Update(_ context.Context, p *Provider) error {
	m.providers[p.ID] = p
	return nil
}

func (m *mockProviderRepo) SetApproval(_ context.Context, id uuid.UUID, approved bool) error {
	p, ok := m.providers[id]
	if !ok {
		return httperr.NotFoundf("provider not found")
	}
	p.Approved = approved
	return nil
}

func (m *mockProviderRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.providers, id)
	return nil
}

func (m *mockProviderRepo) List(_ context.Context, f ListFilter, _, _ int) ([]*Provider, int, error) {
	var result []*Provider
	for _, p := range m.providers {
		if f.ApprovedOnly && !p.Approved {
			continue
		}
		if f.Specialization != "" && p.Specialization != f.Specialization {
			continue
		}
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockProviderRepo) ReplaceAvailability(_ context.Context, providerID uuid.UUID, slots []AvailabilitySlot) error {
	p, ok := m.providers[providerID]
	if !ok {
		return httperr.NotFoundf("provider not found")
	}
	p.Availability = slots
	return nil
}

func (m *mockProviderRepo) Count(_ context.Context) (int, error) {
	return len(m.providers), nil
}

// -- Mock Account Store --

type mockAccounts struct {
	accounts map[uuid.UUID]*identity.Account
}

func (m *mockAccounts) GetByID(_ context.Context, id uuid.UUID) (*identity.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, httperr.NotFoundf("account not found")
	}
	return a, nil
}

func (m *mockAccounts) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.accounts, id)
	return nil
}

// -- Mock Appointment Purger --

type mockPurger struct {
	byProvider map[uuid.UUID]int
	byPatient  map[uuid.UUID]int
}

func (m *mockPurger) DeleteByProvider(_ context.Context, providerID uuid.UUID) (int, error) {
	n := m.byProvider[providerID]
	delete(m.byProvider, providerID)
	return n, nil
}

func (m *mockPurger) DeleteByPatient(_ context.Context, patientID uuid.UUID) (int, error) {
	n := m.byPatient[patientID]
	delete(m.byPatient, patientID)
	return n, nil
}

type testFixture struct {
	svc       *Service
	providers *mockProviderRepo
	accounts  *mockAccounts
	purger    *mockPurger
	images    *imagestore.MemoryStore
}

func newTestFixture() *testFixture {
	providers := newMockProviderRepo()
	accounts := &mockAccounts{accounts: make(map[uuid.UUID]*identity.Account)}
	purger := &mockPurger{byProvider: make(map[uuid.UUID]int), byPatient: make(map[uuid.UUID]int)}
	images := imagestore.NewMemoryStore()
	inTx := func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	svc := NewService(providers, accounts, purger, images, inTx, zerolog.Nop())
	return &testFixture{svc: svc, providers: providers, accounts: accounts, purger: purger, images: images}
}

func (f *testFixture) addDoctor(approved bool) *Provider {
	accountID := uuid.New()
	f.accounts.accounts[accountID] = &identity.Account{ID: accountID, Role: identity.RoleDoctor}
	p := &Provider{
		AccountID:      accountID,
		Specialization: DefaultSpecialization,
		Qualifications: DefaultQualifications,
		Approved:       approved,
	}
	f.providers.Create(context.Background(), p)
	return p
}

// -- Tests --

func TestCreateDefaultProfile(t *testing.T) {
	f := newTestFixture()
	accountID := uuid.New()

	if err := f.svc.CreateDefaultProfile(context.Background(), accountID, "Dr. A"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := f.svc.GetOwn(context.Background(), accountID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Approved {
		t.Error("placeholder profile must not be approved")
	}
	if p.Specialization != DefaultSpecialization {
		t.Errorf("expected %s, got %s", DefaultSpecialization, p.Specialization)
	}
	if p.ConsultationFee != 0 || p.ExperienceYears != 0 {
		t.Error("placeholder profile must have zero fee and experience")
	}
}

func TestList_ApprovalVisibility(t *testing.T) {
	f := newTestFixture()
	f.addDoctor(true)
	f.addDoctor(false)
	ctx := context.Background()

	visible, _, err := f.svc.List(ctx, identity.RolePatient, "", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(visible) != 1 {
		t.Errorf("patient must only see approved providers, got %d", len(visible))
	}

	all, _, err := f.svc.List(ctx, identity.RoleAdmin, "", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin must see all providers, got %d", len(all))
	}
}

func TestList_SpecializationFilter(t *testing.T) {
	f := newTestFixture()
	cardio := f.addDoctor(true)
	cardio.Specialization = "Cardiology"
	f.addDoctor(true)

	got, _, err := f.svc.List(context.Background(), identity.RolePatient, "Cardiology", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != cardio.ID {
		t.Errorf("expected only the cardiologist, got %d providers", len(got))
	}
}

func TestGet_UnapprovedHiddenFromPatients(t *testing.T) {
	f := newTestFixture()
	p := f.addDoctor(false)
	ctx := context.Background()

	if _, err := f.svc.Get(ctx, identity.RolePatient, p.ID); httperr.KindOf(err) != httperr.NotFound {
		t.Errorf("expected not found for patient, got %v", err)
	}
	if _, err := f.svc.Get(ctx, identity.RoleAdmin, p.ID); err != nil {
		t.Errorf("admin must see unapproved provider, got %v", err)
	}
}

func TestUpdateOwnProfile(t *testing.T) {
	f := newTestFixture()
	p := f.addDoctor(true)

	spec := "Neurology"
	exp := 7
	fee := 150
	updated, err := f.svc.UpdateOwnProfile(context.Background(), p.AccountID, UpdateProfileInput{
		Specialization:  &spec,
		ExperienceYears: &exp,
		ConsultationFee: &fee,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Specialization != "Neurology" || updated.ExperienceYears != 7 || updated.ConsultationFee != 150 {
		t.Errorf("unexpected profile: %+v", updated)
	}
}

func TestUpdateOwnProfile_Validation(t *testing.T) {
	f := newTestFixture()
	p := f.addDoctor(true)
	ctx := context.Background()

	bad := "Astrology"
	if _, err := f.svc.UpdateOwnProfile(ctx, p.AccountID, UpdateProfileInput{Specialization: &bad}); httperr.KindOf(err) != httperr.Validation {
		t.Errorf("expected validation error for unknown specialization, got %v", err)
	}

	negative := -1
	if _, err := f.svc.UpdateOwnProfile(ctx, p.AccountID, UpdateProfileInput{ExperienceYears: &negative}); httperr.KindOf(err) != httperr.Validation {
		t.Errorf("expected validation error for negative experience, got %v", err)
	}
	if _, err := f.svc.UpdateOwnProfile(ctx, p.AccountID, UpdateProfileInput{ConsultationFee: &negative}); httperr.KindOf(err) != httperr.Validation {
		t.Errorf("expected validation error for negative fee, got %v", err)
	}
}

func TestValidSpecialization(t *testing.T) {
	for _, s := range []string{"Cardiology", "General Medicine", "Radiology", "Surgery"} {
		if !ValidSpecialization(s) {
			t.Errorf("%s rejected", s)
		}
	}
	for _, s := range []string{"", "cardiology", "Gynecology", "Astrology"} {
		if ValidSpecialization(s) {
			t.Errorf("%s accepted", s)
		}
	}
}

func TestSetAvailability(t *testing.T) {
	f := newTestFixture()
	p := f.addDoctor(true)

	slots := []AvailabilitySlot{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", Enabled: true},
		{DayOfWeek: 1, StartTime: "10:00", EndTime: "11:00", Enabled: true}, // overlap allowed
	}
	updated, err := f.svc.SetAvailability(context.Background(), p.AccountID, slots)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated.Availability) != 2 {
		t.Errorf("expected 2 slots, got %d", len(updated.Availability))
	}
}

func TestSetAvailability_ReplacesWholeList(t *testing.T) {
	f := newTestFixture()
	p := f.addDoctor(true)
	ctx := context.Background()

	f.svc.SetAvailability(ctx, p.AccountID, []AvailabilitySlot{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", Enabled: true},
		{DayOfWeek: 2, StartTime: "09:00", EndTime: "12:00", Enabled: true},
	})
	updated, err := f.svc.SetAvailability(ctx, p.AccountID, []AvailabilitySlot{
		{DayOfWeek: 5, StartTime: "14:00", EndTime: "18:00", Enabled: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated.Availability) != 1 || updated.Availability[0].DayOfWeek != 5 {
		t.Errorf("expected full replacement, got %+v", updated.Availability)
	}
}

func TestSetAvailability_Validation(t *testing.T) {
	f := newTestFixture()
	p := f.addDoctor(true)
	ctx := context.Background()

	cases := []struct {
		name string
		slot AvailabilitySlot
	}{
		{"bad day", AvailabilitySlot{DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"}},
		{"bad start", AvailabilitySlot{DayOfWeek: 1, StartTime: "9am", EndTime: "10:00"}},
		{"bad end", AvailabilitySlot{DayOfWeek: 1, StartTime: "09:00", EndTime: "later"}},
		{"end before start", AvailabilitySlot{DayOfWeek: 1, StartTime: "10:00", EndTime: "09:00"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.SetAvailability(ctx, p.AccountID, []AvailabilitySlot{tc.slot})
			if httperr.KindOf(err) != httperr.Validation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestApprove_Idempotent(t *testing.T) {
	f := newTestFixture()
	p := f.addDoctor(false)
	ctx := context.Background()

	if err := f.svc.Approve(ctx, p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Approved {
		t.Error("expected provider approved")
	}
	if err := f.svc.Approve(ctx, p.ID); err != nil {
		t.Errorf("approve must be idempotent, got %v", err)
	}

	if err := f.svc.Approve(ctx, uuid.New()); httperr.KindOf(err) != httperr.NotFound {
		t.Errorf("expected not found for unknown provider, got %v", err)
	}
}

func TestDeleteProvider_Cascades(t *testing.T) {
	f := newTestFixture()
	p := f.addDoctor(true)
	f.purger.byProvider[p.ID] = 3

	if err := f.svc.DeleteProvider(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := f.providers.providers[p.ID]; ok {
		t.Error("provider profile must be removed")
	}
	if _, ok := f.accounts.accounts[p.AccountID]; ok {
		t.Error("owning account must be removed")
	}
	if _, ok := f.purger.byProvider[p.ID]; ok {
		t.Error("appointments must be purged")
	}
}

func TestDeletePatient_Cascades(t *testing.T) {
	f := newTestFixture()
	patientID := uuid.New()
	f.accounts.accounts[patientID] = &identity.Account{ID: patientID, Role: identity.RolePatient}
	f.purger.byPatient[patientID] = 2

	if err := f.svc.DeletePatient(context.Background(), patientID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := f.accounts.accounts[patientID]; ok {
		t.Error("patient account must be removed")
	}
	if _, ok := f.purger.byPatient[patientID]; ok {
		t.Error("appointments must be purged")
	}
}

func TestDeletePatient_RejectsNonPatient(t *testing.T) {
	f := newTestFixture()
	p := f.addDoctor(true)

	if err := f.svc.DeletePatient(context.Background(), p.AccountID); httperr.KindOf(err) != httperr.NotFound {
		t.Errorf("expected not found for doctor account, got %v", err)
	}
}

func TestSaveProfileImage(t *testing.T) {
	f := newTestFixture()
	p := f.addDoctor(true)
	ctx := context.Background()

	updated, err := f.svc.SaveProfileImage(ctx, p.AccountID, "image/png", strings.NewReader("first"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ImageFilename == nil {
		t.Fatal("expected image filename set")
	}
	first := *updated.ImageFilename

	updated, err = f.svc.SaveProfileImage(ctx, p.AccountID, "image/png", strings.NewReader("second"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *updated.ImageFilename == first {
		t.Error("expected a new filename after replacement")
	}
	if _, err := f.images.Open(ctx, first); err != imagestore.ErrImageNotFound {
		t.Error("replaced image must be removed")
	}
}

func TestSaveProfileImage_RejectsContentType(t *testing.T) {
	f := newTestFixture()
	p := f.addDoctor(true)

	_, err := f.svc.SaveProfileImage(context.Background(), p.AccountID, "application/pdf", strings.NewReader("x"))
	if httperr.KindOf(err) != httperr.Validation {
		t.Errorf("expected validation error, got %v", err)
	}
}
