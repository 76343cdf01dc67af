package site

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-site/internal/config"
	"wedding-site/internal/models"
	"wedding-site/internal/storage/filestore"
	"wedding-site/internal/wishes"
)

func newBuilder(t *testing.T) (*Builder, *filestore.Store) {
	t.Helper()
	store, err := filestore.New(filepath.Join(t.TempDir(), "site.json"))
	require.NoError(t, err)

	ctx := context.Background()
	w, err := store.InsertWish(ctx, models.NewWish{Name: "ann", Message: "Congratulations <3"})
	require.NoError(t, err)
	require.NoError(t, store.UpdateWishLikes(ctx, w.ID, models.LikeUpdate{Likes: 1, LikedBy: []string{"1.2.3.4"}}))
	_, err = store.InsertWish(ctx, models.NewWish{Name: "Bob", Message: "Cheers"})
	require.NoError(t, err)

	board := wishes.NewBoard(store, nil, zerolog.Nop())
	require.NoError(t, board.Load(ctx))

	date := time.Date(2024, 12, 31, 10, 0, 0, 0, time.UTC)
	b := NewBuilder(Details{
		Date:     date,
		Location: "St. Mary's Cathedral",
		PageURL:  "https://wedding.example",
		Content:  config.DefaultContent("Sarah Anderson", "Michael Roberts"),
	}, board, 3)
	b.now = func() time.Time { return date.Add(-25 * time.Hour) }
	return b, store
}

func TestBuild(t *testing.T) {
	b, _ := newBuilder(t)

	p := b.Build(context.Background(), "1.2.3.4", -1)
	assert.Equal(t, "Sarah & Michael's Wedding", p.Title)
	assert.EqualValues(t, 1, p.Countdown.Days)
	assert.EqualValues(t, 1, p.Countdown.Hours)

	require.NotEmpty(t, p.Gallery)
	for _, cell := range p.Gallery {
		assert.Equal(t, cell.Index < 3, cell.Loaded, "cell %d", cell.Index)
	}
	assert.Nil(t, p.Preview)

	require.Len(t, p.Wishes, 2)
	assert.Equal(t, "Bob", p.Wishes[0].Name)
	assert.False(t, p.Wishes[0].LikedByMe)
	assert.True(t, p.Wishes[1].LikedByMe)
	assert.False(t, p.WishesEmpty)

	assert.True(t, p.RSVP.Attending)
	assert.Equal(t, 1, p.RSVP.Guests)
	assert.Contains(t, p.Share.Hashtags, "#SarahMichael2024")

	other := b.Build(context.Background(), "5.6.7.8", -1)
	assert.False(t, other.Wishes[1].LikedByMe)
}

func TestBuildPreview(t *testing.T) {
	b, _ := newBuilder(t)

	p := b.Build(context.Background(), "", 4)
	require.NotNil(t, p.Preview)
	assert.Equal(t, 4, p.Preview.Index)

	p = b.Build(context.Background(), "", 999)
	assert.Nil(t, p.Preview)
}

func TestTemplateRenders(t *testing.T) {
	b, _ := newBuilder(t)

	var buf bytes.Buffer
	require.NoError(t, Templates().ExecuteTemplate(&buf, "index.html", b.Build(context.Background(), "1.2.3.4", 0)))
	html := buf.String()

	assert.Contains(t, html, `class="preview"`)
	assert.Contains(t, html, "Congratulations &lt;3")
	assert.Contains(t, html, `class="like liked"`)
	assert.Contains(t, html, `<span class="avatar">A</span>`)
	assert.Contains(t, html, `class="placeholder"`)
	assert.Contains(t, html, "/share/qr.png")
}

func TestBuildFetchesWishes(t *testing.T) {
	b, store := newBuilder(t)

	_, err := store.InsertWish(context.Background(), models.NewWish{Name: "Cleo", Message: "Hooray"})
	require.NoError(t, err)

	p := b.Build(context.Background(), "", -1)
	require.Len(t, p.Wishes, 3)
	assert.Equal(t, "Cleo", p.Wishes[0].Name)
	assert.Empty(t, p.WishesError)
}

type brokenWishes struct{ *filestore.Store }

func (brokenWishes) ListWishes(context.Context) ([]models.Wish, error) {
	return nil, errors.New("connection refused")
}

func TestBuildLoadFailure(t *testing.T) {
	store, err := filestore.New(filepath.Join(t.TempDir(), "site.json"))
	require.NoError(t, err)
	board := wishes.NewBoard(brokenWishes{store}, nil, zerolog.Nop())
	b := NewBuilder(Details{Content: config.DefaultContent("Sarah Anderson", "Michael Roberts")}, board, 3)

	p := b.Build(context.Background(), "", -1)
	assert.Equal(t, "Failed to load wishes", p.WishesError)
	assert.False(t, p.WishesEmpty)

	var buf bytes.Buffer
	require.NoError(t, Templates().ExecuteTemplate(&buf, "index.html", p))
	assert.Contains(t, buf.String(), "Failed to load wishes")
	assert.NotContains(t, buf.String(), wishes.EmptyNotice)
}

func TestInitial(t *testing.T) {
	assert.Equal(t, "É", initial("  élodie"))
	assert.Equal(t, "?", initial(""))
}

func TestStatic(t *testing.T) {
	for _, name := range []string{"app.js", "site.css"} {
		f, err := Static().Open(name)
		require.NoError(t, err, name)
		f.Close()
	}
}
