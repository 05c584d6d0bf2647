package utils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

// CreateError writes a problem+json style error body.
func CreateError(statusCode int, title, detail string, ctx iris.Context) {
	ctx.StopWithProblem(statusCode, iris.NewProblem().Title(title).Detail(detail))
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(iris.StatusInternalServerError, "Internal Server Error", "Internal Server Error", ctx)
}

func CreateNotFound(ctx iris.Context) {
	CreateError(iris.StatusNotFound, "Not Found", "Not Found", ctx)
}

// HandleValidationErrors turns a ReadJSON failure into a 400. Struct tag
// failures are listed per field.
func HandleValidationErrors(err error, ctx iris.Context) {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		CreateError(iris.StatusBadRequest, "Validation Error", "invalid JSON body: "+err.Error(), ctx)
		return
	}

	fields := make([]iris.Map, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, iris.Map{
			"field": fe.Field(),
			"tag":   fe.Tag(),
			"param": fe.Param(),
			"value": fe.Value(),
		})
	}
	ctx.StopWithProblem(iris.StatusBadRequest, iris.NewProblem().
		Title("Validation Error").
		Detail("One or more fields failed to be validated").
		Key("errors", fields))
}
