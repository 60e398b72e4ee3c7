package dto

import "github.com/go-playground/validator/v10"

// validate instancia única del validador de structs (los validadores cachean
// metadatos por tipo, se recomienda reutilizar una sola instancia).
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate ejecuta las reglas `validate` declaradas en los tags del struct.
func Validate(s any) error {
	return validate.Struct(s)
}

// ValidationFields convierte un error del validador en un mapa campo -> regla
// incumplida, para incluirlo en ErrorResponse.Fields.
func ValidationFields(err error) map[string]string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, ve := range verrs {
		fields[ve.Field()] = ve.Tag()
	}
	return fields
}
