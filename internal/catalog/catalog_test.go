package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/shelfmatch/internal/domain"
	"github.com/listenupapp/shelfmatch/internal/normalize"
)

func makeBook(bookID, title, author string) *domain.Book {
	return domain.NewBook(bookID, domain.Row{
		domain.FieldTitle:  title,
		domain.FieldAuthor: author,
	}, time.Now())
}

func TestNextID_Sequential(t *testing.T) {
	c := New()

	first := c.NextID()
	require.NoError(t, c.Insert(makeBook(first, "Dune", "Herbert")))
	second := c.NextID()

	assert.Equal(t, "1", first)
	assert.Equal(t, "2", second)
	assert.Equal(t, uint64(2), c.Counter())
}

func TestNextID_SkipsExplicitNumericIDs(t *testing.T) {
	c := New()
	require.NoError(t, c.Insert(makeBook("5", "Emma", "Austen")))

	assert.Equal(t, uint64(5), c.Counter())
	assert.Equal(t, "6", c.NextID())
}

func TestNextID_NeverReused(t *testing.T) {
	c := New()
	_ = c.NextID() // handed out but never inserted
	assert.Equal(t, "2", c.NextID())
}

func TestInsert_DuplicateID(t *testing.T) {
	c := New()
	require.NoError(t, c.Insert(makeBook("1", "Dune", "Herbert")))

	err := c.Insert(makeBook("1", "Emma", "Austen"))
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 1, c.Len())
}

func TestInsert_AssignsPositionsInOrder(t *testing.T) {
	c := New()
	for i, title := range []string{"A", "B", "C"} {
		b := makeBook(c.NextID(), title, "X")
		require.NoError(t, c.Insert(b))
		assert.Equal(t, int64(i+1), b.Position)
	}

	books := c.Books()
	require.Len(t, books, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{books[0].Title(), books[1].Title(), books[2].Title()})
}

func TestFindByTitleAuthor(t *testing.T) {
	c := New()
	require.NoError(t, c.Insert(makeBook("1", "Dune", "Frank Herbert")))

	got, ok := c.FindByTitleAuthor(normalize.TitleAuthorKey("  DUNE", "frank herbert "))
	require.True(t, ok)
	assert.Equal(t, "1", got.ID)

	_, ok = c.FindByTitleAuthor(normalize.TitleAuthorKey("Dune", "Someone Else"))
	assert.False(t, ok)
}

func TestReplace_ReindexesTitle(t *testing.T) {
	c := New()
	require.NoError(t, c.Insert(makeBook("1", "Dune", "Herbert")))

	updated := makeBook("1", "Dune Messiah", "Herbert")
	require.NoError(t, c.Replace(updated))

	_, ok := c.FindByTitleAuthor(normalize.TitleAuthorKey("Dune", "Herbert"))
	assert.False(t, ok)
	got, ok := c.FindByTitleAuthor(normalize.TitleAuthorKey("Dune Messiah", "Herbert"))
	require.True(t, ok)
	assert.Equal(t, int64(1), got.Position)
}

func TestReplace_SharedKeyBelongsToEarliestRecord(t *testing.T) {
	c := New()
	require.NoError(t, c.Insert(makeBook("1", "Alpha", "X")))
	require.NoError(t, c.Insert(makeBook("2", "Dune", "Herbert")))

	require.NoError(t, c.Replace(makeBook("1", "Dune", "Herbert")))

	key := normalize.TitleAuthorKey("Dune", "Herbert")
	got, ok := c.FindByTitleAuthor(key)
	require.True(t, ok)
	assert.Equal(t, "1", got.ID)

	restored, err := Restore(c.Books(), c.Counter())
	require.NoError(t, err)
	again, ok := restored.FindByTitleAuthor(key)
	require.True(t, ok)
	assert.Equal(t, got.ID, again.ID)

	// Moving the earlier record away hands the key back to the later one.
	require.NoError(t, c.Replace(makeBook("1", "Alpha", "X")))
	got, ok = c.FindByTitleAuthor(key)
	require.True(t, ok)
	assert.Equal(t, "2", got.ID)
}

func TestClone_IsIndependent(t *testing.T) {
	c := New()
	require.NoError(t, c.Insert(makeBook(c.NextID(), "Dune", "Herbert")))

	staged := c.Clone()
	require.NoError(t, staged.Insert(makeBook(staged.NextID(), "Emma", "Austen")))

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, uint64(1), c.Counter())
	assert.Equal(t, 2, staged.Len())
	_, ok := c.FindByTitleAuthor(normalize.TitleAuthorKey("Emma", "Austen"))
	assert.False(t, ok)
}

func TestRestore_OrdersByPosition(t *testing.T) {
	a := makeBook("1", "A", "X")
	a.Position = 2
	b := makeBook("7", "B", "X")
	b.Position = 1

	c, err := Restore([]*domain.Book{a, b}, 3)
	require.NoError(t, err)

	books := c.Books()
	assert.Equal(t, "7", books[0].ID)
	assert.Equal(t, "1", books[1].ID)
	assert.Equal(t, uint64(7), c.Counter())
	assert.Equal(t, "8", c.NextID())
}
