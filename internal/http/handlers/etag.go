package handlers

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"net/http"
	"strings"

	"github.com/geocoder89/journal/internal/domain/entry"
	"github.com/geocoder89/journal/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// entriesETag digests what a listing page shows. Dates never change and
// prompt text is fixed per prompt id, so ids and entry text are enough.
func entriesETag(p entry.Page) string {
	h := sha256.New()
	writeInt(h, int64(p.Total))
	if p.HasMore {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	for _, e := range p.Entries {
		writeInt(h, e.ID)
		writeInt(h, e.PromptID)
		writeString(h, e.Text)
	}
	return quoteSum(h)
}

func usersETag(users []user.Summary) string {
	h := sha256.New()
	writeInt(h, int64(len(users)))
	for _, u := range users {
		writeInt(h, u.ID)
		writeString(h, u.Email)
		writeString(h, u.Role)
	}
	return quoteSum(h)
}

// writeString is length-prefixed so adjacent fields cannot run together.
func writeString(h hash.Hash, s string) {
	writeInt(h, int64(len(s)))
	h.Write([]byte(s))
}

func writeInt(h hash.Hash, v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	h.Write(b[:])
}

func quoteSum(h hash.Hash) string {
	return `"` + hex.EncodeToString(h.Sum(nil)[:16]) + `"`
}

// respondWithETag answers 304 when the client already holds etag.
func respondWithETag(ctx *gin.Context, etag string, payload any) {
	ctx.Header("ETag", etag)
	ctx.Header("Cache-Control", "private, no-cache")

	if etagMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.JSON(http.StatusOK, payload)
}

func etagMatches(ifNoneMatch, etag string) bool {
	ifNoneMatch = strings.TrimSpace(ifNoneMatch)
	if ifNoneMatch == "" {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}

	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		// weak comparison: W/"x" matches "x"
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == etag {
			return true
		}
	}
	return false
}
