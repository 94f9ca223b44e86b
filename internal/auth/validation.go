package auth

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var userIDPattern = regexp.MustCompile(`^[0-9A-Za-z_]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("userid", func(fl validator.FieldLevel) bool {
		return userIDPattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("failed to register userid validation: %v", err))
	}
	return v
}

type rule struct {
	tag     string
	message string
}

var (
	userIDRules = []rule{
		{tag: "min=3,max=100", message: "ユーザーIDは3文字以上100文字以下で入力してください"},
		{tag: "userid", message: "ユーザーIDに使用できるのは半角英数字とアンダースコアのみです"},
	}
	passwordRules = []rule{
		{tag: "min=5,max=50", message: "パスワードは5文字以上50文字以下で入力してください"},
	}
)

// check は rules を全て評価し、違反したもののメッセージを返します。
func check(value string, rules []rule) []string {
	var violations []string
	for _, r := range rules {
		if err := validate.Var(value, r.tag); err != nil {
			violations = append(violations, r.message)
		}
	}
	return violations
}

func validateUserID(userID string) []string {
	return check(userID, userIDRules)
}

func validateRegistration(userID, plain string) []string {
	return append(validateUserID(userID), check(plain, passwordRules)...)
}
