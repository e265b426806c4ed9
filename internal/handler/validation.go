package handler

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
)

var (
	emailRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phoneRegex = regexp.MustCompile(`^\d{10}$`)

	passwordSpecials = "@$!%*?&"

	// custom validation tags & texts
	customTags = []struct {
		tag  string
		text string
		fn   validator.Func
	}{
		{"emailfmt", "Invalid email format", matches(emailRegex)},
		{"phone10", "Phone number must be exactly 10 digits", matches(phoneRegex)},
		{"strongpwd", "Password must be at least 8 characters long, include uppercase, lowercase, a number, and a special character.", strongPassword},
		{"adult", "Age must be 18 or above", adult},
		{"bloodgroup", "Invalid blood group", oneOf(model.BloodGroups)},
		{"gender", "Invalid gender value", oneOf(model.Genders)},
	}

	translator ut.Translator
	setupOnce  sync.Once
)

// SetupValidator registers the custom tags and English messages on gin's
// validator. Safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		validate, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		english := en.New()
		translator, _ = ut.New(english, english).GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(validate, translator)

		// messages name fields by their label tag
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if label := fld.Tag.Get("label"); label != "" {
				return label
			}
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		for _, ct := range customTags {
			_ = validate.RegisterValidation(ct.tag, ct.fn)
			registerTranslation(validate, ct.tag, ct.text, false)
		}
		registerTranslation(validate, "required", "{0} is required", true)
	})
}

func registerTranslation(validate *validator.Validate, tag, text string, override bool) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// validationMessage picks the message reported to the client. Missing fields
// are reported before malformed ones.
func validationMessage(err error) (string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "", false
	}
	first := verrs[0]
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			first = fe
			break
		}
	}
	if translator == nil {
		return first.Error(), true
	}
	return first.Translate(translator), true
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, a := range allowed {
			if v == a {
				return true
			}
		}
		return false
	}
}

func adult(fl validator.FieldLevel) bool {
	return fl.Field().Int() >= model.MinUserAge
}

// strongPassword: 8+ characters from [A-Za-z0-9@$!%*?&] with at least one
// lowercase, uppercase, digit and special character.
func strongPassword(fl validator.FieldLevel) bool {
	pwd := fl.Field().String()
	if len(pwd) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range pwd {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}
