package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	repo "github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

func memorialInput(name string) MemorialInput {
	return MemorialInput{
		DeceasedName:  ptr(name),
		DateOfBirth:   ptr("1940-05-01"),
		DateOfPassing: ptr("2025-12-24"),
		Location:      ptr("Nyeri"),
	}
}

func TestCreateMemorialPlanLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	free := f.user(t, "f@example.com", entity.RoleFamily, entity.PlanFree)
	_, err := f.memorials.Create(ctx, free.ID, memorialInput("Mzee Kamau"))
	require.NoError(t, err)
	_, err = f.memorials.Create(ctx, free.ID, memorialInput("Mama Njeri"))
	assert.ErrorIs(t, err, ErrForbidden)

	standard := f.user(t, "s@example.com", entity.RoleFamily, entity.PlanStandard)
	for i := 0; i < 5; i++ {
		_, err := f.memorials.Create(ctx, standard.ID, memorialInput("Memorial"))
		require.NoError(t, err)
	}
	_, err = f.memorials.Create(ctx, standard.ID, memorialInput("Sixth"))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateMemorialExpiredSubscriptionFallsBackToFree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "x@example.com", entity.RoleFamily, entity.PlanPremium)
	past := fixedNow.AddDate(0, -1, 0)
	u.SubscriptionExpiry = &past
	require.NoError(t, f.repos.Users.Update(ctx, u))

	_, err := f.memorials.Create(ctx, u.ID, memorialInput("One"))
	require.NoError(t, err)
	_, err = f.memorials.Create(ctx, u.ID, memorialInput("Two"))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateMemorialValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "f@example.com", entity.RoleFamily, entity.PlanPremium)

	cases := map[string]func(*MemorialInput){
		"missing name":    func(in *MemorialInput) { in.DeceasedName = nil },
		"bad date":        func(in *MemorialInput) { in.DateOfBirth = ptr("01/05/1940") },
		"passing first":   func(in *MemorialInput) { in.DateOfPassing = ptr("1930-01-01") },
		"bad visibility":  func(in *MemorialInput) { in.Visibility = ptr(entity.Visibility("friends")) },
		"missing passing": func(in *MemorialInput) { in.DateOfPassing = ptr(" ") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := memorialInput("Mzee")
			mutate(&in)
			_, err := f.memorials.Create(ctx, u.ID, in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestMemorialVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "o@example.com", entity.RoleFamily, entity.PlanPremium)
	other := f.user(t, "v@example.com", entity.RoleFamily, entity.PlanFree)

	in := memorialInput("Private")
	in.Visibility = ptr(entity.VisibilityPrivate)
	private, err := f.memorials.Create(ctx, owner.ID, in)
	require.NoError(t, err)
	in = memorialInput("Family")
	in.Visibility = ptr(entity.VisibilityFamilyOnly)
	family, err := f.memorials.Create(ctx, owner.ID, in)
	require.NoError(t, err)

	_, err = f.memorials.Get(ctx, other.ID, private.ID)
	assert.ErrorIs(t, err, ErrMemorialPrivate)
	_, err = f.memorials.Get(ctx, "", private.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.memorials.Get(ctx, owner.ID, private.ID)
	assert.NoError(t, err)

	_, err = f.memorials.Get(ctx, "", family.ID)
	assert.ErrorIs(t, err, ErrLoginRequired)
	_, err = f.memorials.Get(ctx, other.ID, family.ID)
	assert.NoError(t, err)

	_, err = f.memorials.AddTribute(ctx, "", private.ID, TributeInput{Message: "RIP", AuthorName: "Guest"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListPublicMemorials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "o@example.com", entity.RoleFamily, entity.PlanPremium)
	for _, n := range []string{"Alpha Otieno", "Beta Wambui", "Gamma Otieno"} {
		_, err := f.memorials.Create(ctx, u.ID, memorialInput(n))
		require.NoError(t, err)
	}
	in := memorialInput("Hidden Otieno")
	in.Visibility = ptr(entity.VisibilityPrivate)
	_, err := f.memorials.Create(ctx, u.ID, in)
	require.NoError(t, err)

	items, total, err := f.memorials.ListPublic(ctx, "", repo.NewPage(1, 2, 10))
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Gamma Otieno", items[0].DeceasedName, "newest first")

	items, total, err = f.memorials.ListPublic(ctx, "otieno", repo.NewPage(1, 10, 10))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)
}

func TestUpdateAndDeleteMemorialAreOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "o@example.com", entity.RoleFamily, entity.PlanFree)
	other := f.user(t, "v@example.com", entity.RoleFamily, entity.PlanFree)
	m, err := f.memorials.Create(ctx, owner.ID, memorialInput("Mzee"))
	require.NoError(t, err)

	_, err = f.memorials.Update(ctx, other.ID, m.ID, MemorialInput{Biography: ptr("x")})
	assert.ErrorIs(t, err, ErrMemorialNotFound)
	assert.ErrorIs(t, f.memorials.Delete(ctx, other.ID, m.ID), ErrMemorialNotFound)

	got, err := f.memorials.Update(ctx, owner.ID, m.ID, MemorialInput{Biography: ptr("A schoolmaster from Nyeri."), FuneralDetails: rawJSON(`{"venue":"ACK"}`)})
	require.NoError(t, err)
	assert.Equal(t, "A schoolmaster from Nyeri.", got.Biography)
	assert.JSONEq(t, `{"venue":"ACK"}`, string(got.FuneralDetails))

	_, err = f.memorials.Update(ctx, owner.ID, m.ID, MemorialInput{DateOfPassing: ptr("1900-01-01")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTributes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "o@example.com", entity.RoleFamily, entity.PlanFree)
	m, err := f.memorials.Create(ctx, owner.ID, memorialInput("Mzee"))
	require.NoError(t, err)

	_, err = f.memorials.AddTribute(ctx, "", m.ID, TributeInput{Message: "RIP"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	first, err := f.memorials.AddTribute(ctx, "", m.ID, TributeInput{Message: "Rest well", AuthorName: "Guest"})
	require.NoError(t, err)
	assert.Empty(t, first.UserID)
	_, err = f.memorials.AddTribute(ctx, owner.ID, m.ID, TributeInput{Message: "Miss you", AuthorName: "Son", Relationship: "son"})
	require.NoError(t, err)

	list, err := f.memorials.ListTributes(ctx, "", m.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Miss you", list[0].Message)
}

func TestMemorialMedia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "o@example.com", entity.RoleFamily, entity.PlanFree)
	other := f.user(t, "v@example.com", entity.RoleFamily, entity.PlanFree)
	m, err := f.memorials.Create(ctx, owner.ID, memorialInput("Mzee"))
	require.NoError(t, err)

	_, err = f.memorials.AddMediaLink(ctx, other.ID, m.ID, entity.MediaPhoto, "https://img/x.jpg", "")
	assert.ErrorIs(t, err, ErrMemorialNotFound)

	link, err := f.memorials.AddMediaLink(ctx, owner.ID, m.ID, entity.MediaVideo, "https://video/x.mp4", "Service")
	require.NoError(t, err)

	up, err := f.memorials.UploadMedia(ctx, owner.ID, m.ID, entity.MediaPhoto, "portrait.JPG", 3, strings.NewReader("img"), "Portrait")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.URL, "https://storage.test/memorials/"+m.ID+"/photos/"))
	assert.Equal(t, owner.ID, up.UploadedBy)

	_, err = f.memorials.UploadMedia(ctx, owner.ID, m.ID, entity.MediaPhoto, "notes.pdf", 3, strings.NewReader("pdf"), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.memorials.UploadMedia(ctx, owner.ID, m.ID, entity.MediaVideo, "clip.mov", 3, strings.NewReader("mov"), "")
	assert.ErrorIs(t, err, ErrInvalidInput, "mov is not in the configured allow-list")
	_, err = f.memorials.UploadMedia(ctx, owner.ID, m.ID, entity.MediaPhoto, "big.png", 4096, strings.NewReader("x"), "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	photos, videos, err := f.memorials.ListMedia(ctx, "", m.ID)
	require.NoError(t, err)
	assert.Len(t, photos, 1)
	assert.Len(t, videos, 1)

	assert.ErrorIs(t, f.memorials.DeleteMedia(ctx, owner.ID, m.ID, entity.MediaPhoto, link.ID), ErrMediaNotFound)
	require.NoError(t, f.memorials.DeleteMedia(ctx, owner.ID, m.ID, entity.MediaPhoto, up.ID))
	assert.Equal(t, []string{up.URL}, f.store.deleted)
}

func TestUploadMediaWithoutStorage(t *testing.T) {
	f := newFixture(t)
	f.memorials.Store = nil
	ctx := context.Background()
	owner := f.user(t, "o@example.com", entity.RoleFamily, entity.PlanFree)
	m, err := f.memorials.Create(ctx, owner.ID, memorialInput("Mzee"))
	require.NoError(t, err)

	_, err = f.memorials.UploadMedia(ctx, owner.ID, m.ID, entity.MediaPhoto, "a.png", 1, strings.NewReader("x"), "")
	assert.ErrorIs(t, err, ErrUnavailable)
}
