package dataset

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const (
	versionLayout = "20060102150405"
	tagLength     = 3
)

// NewVersion builds a dataset version string: the current UTC time to the
// second, a dash and a three character tag. Short tags are padded with "x"
// and long ones cut. An empty tag is replaced by a random base-36 one.
func NewVersion(tag string) string {
	return versionAt(time.Now(), tag)
}

func versionAt(now time.Time, tag string) string {
	if tag == "" {
		tag = randomTag(now)
	}
	tag = strings.ReplaceAll(tag, " ", "x")
	if len(tag) < tagLength {
		tag += strings.Repeat("x", tagLength-len(tag))
	}
	return now.UTC().Format(versionLayout) + "-" + tag[:tagLength]
}

// randomTag mixes the tenth of a second with a random digit, so versions
// made within one second still tend to differ.
func randomTag(now time.Time) string {
	n := (now.Nanosecond()/int(100*time.Millisecond))*10 + rand.IntN(10)
	if n == 0 {
		return ""
	}
	return strconv.FormatInt(int64(n), 36)
}
