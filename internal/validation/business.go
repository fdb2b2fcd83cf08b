package validation

import "admitdesk/internal/models"

// RechargeSubmission validates the multipart recharge form fields.
func (v *Validator) RechargeSubmission(centerCode string, amount float64, paySlip string) {
	v.CenterCode("centerCode", centerCode)
	v.Positive("amount", amount)
	v.Check(paySlip != "", "paySlip", "payment slip is required")
}

// Center validates a center registration.
func (v *Validator) Center(center *models.Center) {
	v.CenterCode("code", center.Code)
	v.Required("name", center.Name)
	v.Email("email", center.Email)
}

// Student validates a student application.
func (v *Validator) Student(student *models.Student) {
	v.Required("name", student.Name)
	v.Email("email", student.Email)
	v.Check(student.EnrollmentFee >= 0, "enrollmentFee", "must not be negative")
}
