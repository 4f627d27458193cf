package placeholder

import (
	"context"
	"errors"
	"net/url"
	"path"

	"go.uber.org/zap"

	"github.com/remintlab/collection-harvester/internal/logger"
)

// AcceptedExtension is the only media extension drawn from the stream
const AcceptedExtension = ".gif"

// ErrMediaExhausted is returned when the search results run out before
// every token has been assigned a media item.
var ErrMediaExhausted = errors.New("placeholder media stream exhausted")

// Stream lazily draws eligible media items from the offset-paginated search
// endpoint. A Stream is single-traversal; restarting means re-running the
// whole normalization pass with a fresh Stream.
type Stream struct {
	client Client
	term   string
	limit  int

	offset int
	total  int // -1 until the first page reveals it
	buf    []MediaItem
}

// NewStream creates a stream over the search results for term
func NewStream(client Client, term string, pageLimit int) *Stream {
	if pageLimit <= 0 {
		pageLimit = 25
	}
	return &Stream{
		client: client,
		term:   term,
		limit:  pageLimit,
		total:  -1,
	}
}

// Next draws the next eligible media item, fetching further pages as needed.
// It returns ErrMediaExhausted once offset reaches the reported total count
// with no eligible items left.
func (s *Stream) Next(ctx context.Context) (*MediaItem, error) {
	for len(s.buf) == 0 {
		if s.total >= 0 && s.offset >= s.total {
			return nil, ErrMediaExhausted
		}

		result, err := s.client.Search(ctx, s.term, s.offset, s.limit)
		if err != nil {
			return nil, err
		}

		s.total = result.TotalCount
		s.offset += s.limit

		if len(result.Items) == 0 {
			return nil, ErrMediaExhausted
		}

		for _, item := range result.Items {
			if eligible(item.URL) {
				s.buf = append(s.buf, item)
			}
		}

		logger.Debug("placeholder search page consumed",
			zap.String("term", s.term),
			zap.Int("offset", s.offset),
			zap.Int("total", s.total),
			zap.Int("eligible", len(s.buf)),
		)
	}

	item := s.buf[0]
	s.buf = s.buf[1:]
	return &item, nil
}

// eligible reports whether the item URL points at media with the accepted
// extension, ignoring any query string.
func eligible(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return path.Ext(parsed.Path) == AcceptedExtension
}
