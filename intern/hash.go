package intern

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"github.com/minio/highwayhash"
)

// hashKey is the fixed HighwayHash key used for content-addressed IDs. It
// must be exactly 32 bytes (highwayhash.New64 rejects any other length),
// matching the teacher's own fixed 32-byte key (inspector/graph/hash.go,
// "0123456789ABCDEF0123456789ABCDEF"). It need not be secret: a collision
// only makes HashID fall back to a sequential ID, never a security issue.
var hashKey = []byte("tsqllineage-content-addr-key-032")

// Hasher mints content-addressed IDs for the case where the same logical
// node must not be created twice from two code paths (spec.md §4.1
// `hash_id`). On a digest collision against a different logical key it
// falls back to a fresh sequential ID, per the collision policy.
type Hasher struct {
	mu    sync.Mutex
	seen  map[uint64]string // digest -> logical key that produced it
	seq   *Sequence
	onWarn func(msg string)
}

// NewHasher creates a Hasher. onWarn, if non-nil, receives collision
// warnings (spec.md §4.1's "log a warning"); pass nil to discard them.
func NewHasher(seq *Sequence, onWarn func(string)) *Hasher {
	return &Hasher{
		seen:   make(map[uint64]string),
		seq:    seq,
		onWarn: onWarn,
	}
}

// HashID returns a deterministic digest-derived ID for the given logical
// key components. If the digest collides with a different logical key
// already seen, it mints a fresh sequential ID instead and reports the
// collision via onWarn.
func (h *Hasher) HashID(prefix string, components ...string) string {
	logicalKey := strings.Join(components, "\x1f")
	digest := highwayHash64(logicalKey)

	h.mu.Lock()
	defer h.mu.Unlock()

	if prior, ok := h.seen[digest]; ok {
		if prior == logicalKey {
			return fmt.Sprintf("%s#h%x", prefix, digest)
		}
		if h.onWarn != nil {
			h.onWarn(fmt.Sprintf("hash_id collision for prefix %q: %q and %q share digest %x", prefix, prior, logicalKey, digest))
		}
		return h.seq.Next(prefix)
	}

	h.seen[digest] = logicalKey
	return fmt.Sprintf("%s#h%x", prefix, digest)
}

func highwayHash64(s string) uint64 {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		// hashKey is a fixed 32-byte constant; New64 only fails on bad key length.
		panic(err)
	}
	_, _ = h.Write([]byte(s))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}
