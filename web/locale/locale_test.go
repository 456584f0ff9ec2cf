package locale

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFS = fstest.MapFS{
	"translation/active.en-US.toml": {Data: []byte("[procedure]\n\"added\" = \"Procedure #{{.SeqId}} saved\"\n")},
	"translation/active.de-DE.toml": {Data: []byte("[procedure]\n\"added\" = \"Eingriff #{{.SeqId}} gespeichert\"\n")},
}

func TestTranslate(t *testing.T) {
	b, err := NewBundle(testFS, "translation", "de-DE")
	require.NoError(t, err)

	assert.Equal(t, "Eingriff #3 gespeichert", Translate(b.Localizer(), "procedure.added", "SeqId==3"))
	assert.Equal(t, "Procedure #3 saved", Translate(b.Localizer("en-US"), "procedure.added", "SeqId==3"))
	assert.Equal(t, "missing.key", Translate(b.Localizer(), "missing.key"))
	assert.Equal(t, "procedure.added", Translate(nil, "procedure.added"))
}

func TestLocalizerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	b, err := NewBundle(testFS, "translation", "de-DE")
	require.NoError(t, err)

	r := gin.New()
	r.Use(b.LocalizerMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, I18n(c, "procedure.added", "SeqId==1"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "Procedure #1 saved", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "lang", Value: "de-DE"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "Eingriff #1 gespeichert", w.Body.String())
}
