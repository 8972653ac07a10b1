package config

// Validator singleton for the pipeline config with english messages keyed by
// json field names

import (
	stderrs "errors"
	"reflect"
	"strings"
	"sync"

	perr "github.com/SamMeown/ETL/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

var (
	vOnce  sync.Once
	vld    *validator.Validate
	vTrans ut.Translator
)

func initValidator() {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// report json keys rather than Go field names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})

		_ = entrans.RegisterDefaultTranslations(v, trans)

		vld = v
		vTrans = trans
	})
}

// validateFile checks the loaded config and folds every field failure into
// one readable error
func validateFile(f *File) error {
	initValidator()

	err := vld.Struct(f)
	if err == nil {
		return nil
	}

	var ferrs validator.ValidationErrors
	if !stderrs.As(err, &ferrs) {
		return perr.Wrap(err, perr.KindConfig, "validate config")
	}

	msgs := make([]string, 0, len(ferrs))
	for _, fe := range ferrs {
		msgs = append(msgs, fe.Translate(vTrans))
	}
	return perr.Newf(perr.KindConfig, "config: %s", strings.Join(msgs, "; "))
}
