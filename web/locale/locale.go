// Package locale translates user-facing messages of the web API.
package locale

import (
	"io/fs"
	"strings"

	"github.com/oplog/oplog/logger"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

const localizerKey = "localizer"

// Bundle holds the parsed translations and the fallback language.
type Bundle struct {
	bundle      *i18n.Bundle
	defaultLang string
}

// NewBundle parses every file under dir of fsys. Files are named like
// "active.de-DE.toml".
func NewBundle(fsys fs.FS, dir, defaultLang string) (*Bundle, error) {
	b := i18n.NewBundle(language.MustParse("en-US"))
	b.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	if err := parseTranslationFiles(fsys, dir, b); err != nil {
		return nil, err
	}
	return &Bundle{bundle: b, defaultLang: defaultLang}, nil
}

// Localizer returns a localizer for the given preferences, falling back to
// the bundle's default language.
func (b *Bundle) Localizer(langs ...string) *i18n.Localizer {
	return i18n.NewLocalizer(b.bundle, append(langs, b.defaultLang)...)
}

func createTemplateData(params []string, seperator ...string) map[string]any {
	sep := "=="
	if len(seperator) > 0 {
		sep = seperator[0]
	}

	templateData := make(map[string]any)
	for _, param := range params {
		parts := strings.SplitN(param, sep, 2)
		if len(parts) == 2 {
			templateData[parts[0]] = parts[1]
		}
	}
	return templateData
}

// Translate renders message key with "name==value" params. The key itself
// is returned when no localizer is available or the message is unknown.
func Translate(localizer *i18n.Localizer, key string, params ...string) string {
	if localizer == nil {
		return key
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: createTemplateData(params),
	})
	if err != nil {
		logger.Warningf("Failed to localize message %q: %v", key, err)
		return key
	}
	return msg
}

// I18n translates key for the language of the current request.
func I18n(c *gin.Context, key string, params ...string) string {
	var localizer *i18n.Localizer
	if v, ok := c.Get(localizerKey); ok {
		localizer, _ = v.(*i18n.Localizer)
	}
	if localizer == nil {
		logger.Warning("localizer not set in gin context")
	}
	return Translate(localizer, key, params...)
}

// LocalizerMiddleware picks the request language from the "lang" cookie or
// the Accept-Language header.
func (b *Bundle) LocalizerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var lang string
		if cookie, err := c.Request.Cookie("lang"); err == nil {
			lang = cookie.Value
		} else {
			lang = c.GetHeader("Accept-Language")
		}
		c.Set(localizerKey, b.Localizer(lang))
		c.Next()
	}
}

func parseTranslationFiles(fsys fs.FS, dir string, bundle *i18n.Bundle) error {
	return fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		_, err = bundle.ParseMessageFileBytes(data, path)
		return err
	})
}
