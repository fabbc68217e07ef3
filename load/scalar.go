package load

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/xerrors"

	"github.com/conjurernix/atomdb/atomdberr"
	"github.com/conjurernix/atomdb/value"
)

// parseRatio is the exact inverse of value.Ratio.String: "n/d" with an
// optional leading '-' on n.
func parseRatio(s string) (value.Ratio, error) {
	idx := strings.IndexByte(s, '/')
	if idx < 0 {
		return value.Ratio{}, xerrors.Errorf("%w: ratio literal %q has no separator", atomdberr.ErrCodec, s)
	}
	n, err := strconv.ParseInt(s[:idx], 10, 64)
	if err != nil {
		return value.Ratio{}, xerrors.Errorf("%w: ratio numerator %q: %v", atomdberr.ErrCodec, s[:idx], err)
	}
	d, err := strconv.ParseInt(s[idx+1:], 10, 64)
	if err != nil {
		return value.Ratio{}, xerrors.Errorf("%w: ratio denominator %q: %v", atomdberr.ErrCodec, s[idx+1:], err)
	}
	return value.Ratio{N: n, D: d}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
