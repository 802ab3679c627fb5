package history

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairtrack/hairtrack-api/internal/domain/analysis"
	"github.com/hairtrack/hairtrack-api/internal/pkg/classifier"
	"github.com/hairtrack/hairtrack-api/internal/pkg/database/dbtest"
)

type fakeSigner struct {
	fail map[string]bool
}

func (f fakeSigner) Sign(ctx context.Context, key string) (string, error) {
	if f.fail[key] {
		return "", errors.New("object not found")
	}
	return "https://signed.test/" + key + "?ttl=600", nil
}

type fixture struct {
	svc    *Service
	repo   analysis.Repository
	userID uuid.UUID
	first  *analysis.Session
	second *analysis.Session
}

func insertUser(t *testing.T, db *sqlx.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	_, err := db.Exec(db.Rebind(`INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`),
		id, id.String()+"@example.com", "x", now, now)
	require.NoError(t, err)
	return id
}

func newFixture(t *testing.T, signer Signer) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	repo := analysis.NewRepository(db)
	userID := insertUser(t, db)
	ctx := context.Background()

	notes := "Crown density improved."
	first := analysis.NewSession(userID, &classifier.Result{
		OverallScore: 65, DensityScore: 60, HairlineScore: 70, CrownScore: 55, AISummary: "Baseline.",
	}, date("2024-01-01").Add(9*time.Hour))
	second := analysis.NewSession(userID, &classifier.Result{
		OverallScore: 70, DensityScore: 62, HairlineScore: 71, CrownScore: 61, AISummary: "Improving.",
		AlertTriggered: true, ComparisonNotes: &notes,
	}, date("2024-01-08").Add(9*time.Hour))

	require.NoError(t, repo.CreateWithPhotos(ctx, first, []analysis.Photo{
		{Angle: analysis.AngleTop, PhotoURL: userID.String() + "/1_top.jpg"},
		{Angle: analysis.AngleCrown, PhotoURL: userID.String() + "/1_crown.jpg"},
	}))
	require.NoError(t, repo.CreateWithPhotos(ctx, second, []analysis.Photo{
		{Angle: analysis.AngleHairline, PhotoURL: userID.String() + "/2_hairline.jpg"},
		{Angle: analysis.AngleCrown, PhotoURL: userID.String() + "/2_crown.jpg"},
	}))

	svc := NewService(repo, signer)
	svc.now = func() time.Time { return date("2024-01-10") }
	return &fixture{svc: svc, repo: repo, userID: userID, first: first, second: second}
}

func TestListNewestFirstWithDeltas(t *testing.T) {
	f := newFixture(t, fakeSigner{})

	list, err := f.svc.List(context.Background(), f.userID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, f.second.ID, list[0].ID)
	require.NotNil(t, list[0].Delta)
	assert.Equal(t, 5, list[0].Delta.Overall)
	assert.Nil(t, list[1].Delta)

	// Persisted values read back exactly.
	assert.Equal(t, "Improving.", list[0].AISummary)
	assert.True(t, list[0].AlertTriggered)
	assert.Equal(t, "Crown density improved.", *list[0].ComparisonNotes)
	assert.Equal(t, []int{70, 62, 71, 61}, []int{list[0].OverallScore, list[0].DensityScore, list[0].HairlineScore, list[0].CrownScore})
}

func TestGetSignsPhotos(t *testing.T) {
	f := newFixture(t, fakeSigner{})

	got, err := f.svc.Get(context.Background(), f.userID, f.second.ID)
	require.NoError(t, err)
	require.Len(t, got.Photos, 2)
	assert.Equal(t, analysis.AngleHairline, got.Photos[0].Angle)
	assert.Equal(t, "Hairline", got.Photos[0].Label)
	assert.True(t, strings.HasSuffix(got.Photos[0].URL, "2_hairline.jpg?ttl=600"))

	_, err = f.svc.Get(context.Background(), uuid.New(), f.second.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetSkipsUnsignablePhotos(t *testing.T) {
	f := newFixture(t, nil)
	f.svc.signer = fakeSigner{fail: map[string]bool{f.userID.String() + "/1_top.jpg": true}}

	got, err := f.svc.Get(context.Background(), f.userID, f.first.ID)
	require.NoError(t, err)
	require.Len(t, got.Photos, 1)
	assert.Equal(t, analysis.AngleCrown, got.Photos[0].Angle)
}

func TestCompare(t *testing.T) {
	f := newFixture(t, fakeSigner{})

	cmp, err := f.svc.Compare(context.Background(), f.userID, f.first.ID, f.second.ID)
	require.NoError(t, err)
	assert.Equal(t, Delta{Overall: 5, Density: 2, Hairline: 1, Crown: 6}, cmp.Diff)
	assert.Len(t, cmp.A.Photos, 2)
	assert.Len(t, cmp.B.Photos, 2)

	_, err = f.svc.Compare(context.Background(), f.userID, f.first.ID, f.first.ID)
	assert.ErrorIs(t, err, ErrSameSession)
	_, err = f.svc.Compare(context.Background(), f.userID, f.first.ID, uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestTrend(t *testing.T) {
	f := newFixture(t, fakeSigner{})

	trend, err := f.svc.Trend(context.Background(), f.userID)
	require.NoError(t, err)
	require.Len(t, trend.Series, 2)
	assert.Equal(t, 65, trend.Series[0].Overall)
	assert.Equal(t, 2, trend.Streak)
	assert.InDelta(t, 67.5, trend.Stats.Mean, 0.001)
}

func TestReport(t *testing.T) {
	f := newFixture(t, fakeSigner{})

	md, err := f.svc.Report(context.Background(), f.userID, f.second.ID)
	require.NoError(t, err)
	assert.Contains(t, md, "**Date:** January 8, 2024")
	assert.Contains(t, md, "| Overall | 70/100 | +5 |")
	assert.Contains(t, md, "## Changes Since Last Analysis")
	assert.Contains(t, md, "**Alert:**")
	assert.Contains(t, md, "- Hairline\n- Crown\n")

	first, err := f.svc.Report(context.Background(), f.userID, f.first.ID)
	require.NoError(t, err)
	assert.Contains(t, first, "| Overall | 65/100 | n/a |")
	assert.NotContains(t, first, "**Alert:**")

	html := string(RenderHTML(md))
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<blockquote>")
}

func TestExportParquet(t *testing.T) {
	f := newFixture(t, fakeSigner{})

	var buf bytes.Buffer
	n, err := f.svc.Export(context.Background(), f.userID, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	pf, err := parquet.OpenFile(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	reader := parquet.NewGenericReader[ExportRow](pf)
	defer reader.Close()

	rows := make([]ExportRow, 2)
	read, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		require.NoError(t, err)
	}
	require.Equal(t, 2, read)

	assert.Equal(t, f.first.ID.String(), rows[0].SessionID)
	assert.Equal(t, "2024-01-01", rows[0].Date)
	assert.Nil(t, rows[0].OverallDelta)
	assert.Equal(t, "top,crown", rows[0].Angles)

	assert.Equal(t, int32(70), rows[1].OverallScore)
	require.NotNil(t, rows[1].OverallDelta)
	assert.Equal(t, int32(5), *rows[1].OverallDelta)
	require.NotNil(t, rows[1].ComparisonNotes)
	assert.True(t, rows[1].AlertTriggered)
}

func TestSessionResponseWithoutNotes(t *testing.T) {
	s := &analysis.Session{ID: uuid.New(), ComparisonNotes: sql.NullString{}}
	assert.Nil(t, SessionResponseFromEntity(s, nil).ComparisonNotes)
}
