package gallery

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/BeatGlow/overlay/pixel"
	"github.com/BeatGlow/overlay/stats"
)

const schema = `
CREATE TABLE IF NOT EXISTS totals (
	image_id   TEXT PRIMARY KEY,
	digest     TEXT NOT NULL,
	pixels     INTEGER NOT NULL,
	data       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);`

// ErrCorrupt is returned for cache entries that cannot be decoded.
var ErrCorrupt = errors.New("gallery: corrupt cache entry")

// Cache stores per image totals keyed by image ID. An entry is only returned while the
// image content digest is unchanged, so edited images are recounted.
type Cache struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// OpenCache opens (and creates) the cache database at path. Use ":memory:" for a
// throwaway cache.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		schema,
	} {
		if _, err = db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("open cache %s: %w", path, err)
		}
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		_ = db.Close()
		return nil, err
	}
	return &Cache{db: db, enc: enc, dec: dec}, nil
}

// Close the cache database.
func (c *Cache) Close() error {
	c.dec.Close()
	_ = c.enc.Close()
	return c.db.Close()
}

// Totals returns the cached totals of an image, if present for this digest.
func (c *Cache) Totals(ctx context.Context, id, digest string) (stats.Totals, bool, error) {
	var (
		have string
		data []byte
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT digest, data FROM totals WHERE image_id = ?", id).Scan(&have, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read totals %s: %w", id, err)
	}
	if have != digest {
		return nil, false, nil
	}

	raw, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w %s: %v", ErrCorrupt, id, err)
	}
	t, err := decodeTotals(raw)
	if err != nil {
		return nil, false, fmt.Errorf("%w %s: %v", ErrCorrupt, id, err)
	}
	return t, true, nil
}

// Store saves the totals of an image, replacing any previous entry.
func (c *Cache) Store(ctx context.Context, id, digest string, t stats.Totals) error {
	data := c.enc.EncodeAll(encodeTotals(t), nil)
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO totals (image_id, digest, pixels, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(image_id) DO UPDATE SET
			digest = excluded.digest,
			pixels = excluded.pixels,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		id, digest, t.Sum(), data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("store totals %s: %w", id, err)
	}
	return nil
}

// encodeTotals writes the number of colors followed by (key, count) uvarint pairs in key order.
func encodeTotals(t stats.Totals) []byte {
	keys := make([]pixel.Key, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	buf := binary.AppendUvarint(nil, uint64(len(keys)))
	for _, k := range keys {
		buf = binary.AppendUvarint(buf, uint64(k))
		buf = binary.AppendUvarint(buf, uint64(t[k]))
	}
	return buf
}

func decodeTotals(buf []byte) (stats.Totals, error) {
	n, i := binary.Uvarint(buf)
	if i <= 0 {
		return nil, errors.New("bad length")
	}
	buf = buf[i:]
	t := make(stats.Totals, min(n, uint64(len(buf))/2))
	for j := uint64(0); j < n; j++ {
		k, i := binary.Uvarint(buf)
		if i <= 0 || k > 0xffffff {
			return nil, errors.New("bad key")
		}
		buf = buf[i:]
		v, i := binary.Uvarint(buf)
		if i <= 0 || v > math.MaxInt {
			return nil, errors.New("bad count")
		}
		buf = buf[i:]
		t[pixel.Key(k)] = int(v)
	}
	if len(buf) != 0 {
		return nil, errors.New("trailing bytes")
	}
	return t, nil
}
