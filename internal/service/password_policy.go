package service

const defaultPasswordMinLength = 8

type passwordPolicyError struct {
	minLength int
}

func (e passwordPolicyError) Error() string {
	return "error.password_too_short"
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrPasswordTooShort
}

// MinLength 密码最小长度
func (e passwordPolicyError) MinLength() int {
	return e.minLength
}

// validatePassword 仅校验最小长度（按字符计）
func validatePassword(minLength int, password string) error {
	if minLength <= 0 {
		minLength = defaultPasswordMinLength
	}
	if len([]rune(password)) < minLength {
		return passwordPolicyError{minLength: minLength}
	}
	return nil
}
