package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCenterCode(t *testing.T) {
	cases := []struct {
		code string
		ok   bool
	}{
		{"1022", true},
		{"0001", true},
		{"102", false},
		{"10225", false},
		{"10a2", false},
		{"", false},
		{" 1022", false},
	}
	for _, tc := range cases {
		v := New()
		v.CenterCode("code", tc.code)
		assert.Equal(t, tc.ok, v.Valid(), "code %q", tc.code)
	}
}

func TestPassword(t *testing.T) {
	v := New()
	v.Password("password", "Str0ng!pass")
	assert.True(t, v.Valid())

	v = New()
	v.Password("password", "alllowercase1!")
	assert.False(t, v.Valid())
	assert.Contains(t, v.Errors["password"], "uppercase")

	v = New()
	v.Password("password", "Sh0r!t")
	assert.False(t, v.Valid())
}

func TestRechargeSubmission(t *testing.T) {
	v := New()
	v.RechargeSubmission("1022", 500, "slip.png")
	assert.True(t, v.Valid())

	v = New()
	v.RechargeSubmission("1022", 0, "")
	assert.False(t, v.Valid())
	assert.Len(t, v.Errors, 2)

	v = New()
	v.RechargeSubmission("22", -10, "slip.png")
	assert.False(t, v.Valid())
	assert.Contains(t, v.Error(), "centerCode")
}
