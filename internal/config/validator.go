package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterStructValidation(validateSheetsConfig, SheetsConfig{})
	if err := validate.RegisterTranslation("sheet_name_required", trans, func(ut ut.Translator) error {
		return ut.Add("sheet_name_required", "{0} must be set when sheets.spreadsheet_id is set", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("sheet_name_required", strings.TrimPrefix(fe.Namespace(), "Config."))
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register sheet_name_required translation: %w", err)
	}

	return validate, trans, nil
}

// validateSheetsConfig rejects a spreadsheet id without a sheet name.
func validateSheetsConfig(sl validator.StructLevel) {
	sheets := sl.Current().Interface().(SheetsConfig)
	if sheets.SpreadsheetID != "" && strings.TrimSpace(sheets.SheetName) == "" {
		sl.ReportError(sheets.SheetName, "sheet_name", "SheetName", "sheet_name_required", "")
	}
}
