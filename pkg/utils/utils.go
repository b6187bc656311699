package utils

import (
	"crypto/md5"
	"encoding/hex"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/holdno/snowFlakeByGo"

	"github.com/rowdybard/banterbox/pkg/errors"
)

var (
	idWorker *snowFlakeByGo.Worker
)

func SetupIDWorker(clusterID int64) {
	idWorker, _ = snowFlakeByGo.NewWorker(clusterID)
}

func init() {
	SetupIDWorker(0)
}

func GenUniqID() int64 {
	return idWorker.GetId()
}

func GenUniqIDStr() string {
	return strconv.FormatInt(GenUniqID(), 10)
}

// Random returns an int in [min,max].
func Random(min, max int) int {
	if min >= max {
		return max
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return min + r.Intn(max-min+1)
}

func MD5(s string) string {
	h := md5.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

// TruncateRunes cuts s to at most limit runes, appending an ellipsis when
// anything was dropped.
func TruncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// LongWords splits text into lowercased words longer than minLen, stripped of
// surrounding punctuation.
func LongWords(text string, minLen int) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?;:'\"()[]")
		if len(w) > minLen {
			out = append(out, w)
		}
	}
	return out
}

func BindArgsWithGin(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindWith(req, binding.Default(c.Request.Method, c.ContentType())); err != nil {
		return errors.New("utils.BindArgsWithGin", err.Error(), err).Code(400)
	}

	if v, ok := req.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return errors.Trace("utils.BindArgsWithGin.Validate", err)
		}
	}
	return nil
}
