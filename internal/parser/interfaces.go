package parser

import (
	"errors"
	"io"

	"github.com/Belphemur/ShowFinder/internal/models"
)

// ErrNullBody is returned for a response whose body is the JSON literal null
// instead of an array.
var ErrNullBody = errors.New("response body is null")

// Parser projects a TVMaze JSON response body into a list of records.
type Parser[T any] interface {
	Parse(body io.Reader) ([]T, error)
}

var (
	_ Parser[models.Show]    = (*ShowSearchParser)(nil)
	_ Parser[models.Episode] = (*EpisodeParser)(nil)
)
