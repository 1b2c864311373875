package types

// Profile is the role-specific extension record attached one-to-one to a
// User. Concrete representations are PatientProfile and DoctorProfile;
// API responses always carry one of the two, never a bare User.
type Profile interface {
	// Role reports which role's schema the profile satisfies.
	Role() Role
}

// ProfileFields bundles the role-specific registration input. Only the
// fields matching the user's role are consulted; the rest are ignored.
type ProfileFields struct {
	// FatherName is the patient's father's name.
	FatherName string `json:"father_name"`

	// AssignedDoctorID optionally references the doctor assigned to the
	// patient. Stored opaquely; no referential check is performed here.
	AssignedDoctorID string `json:"assigned_doctor_id"`

	// IllnessDescription is the patient's free-form complaint.
	IllnessDescription string `json:"illness_description"`

	// Specialization is the doctor's medical specialization.
	Specialization string `json:"specialization"`
}

// PatientProfile is the representation of a patient account.
type PatientProfile struct {
	ID                 string     `json:"id"`
	User               PublicUser `json:"user"`
	FatherName         string     `json:"father_name"`
	AssignedDoctorID   string     `json:"assigned_doctor_id,omitempty"`
	IllnessDescription string     `json:"illness_description"`
}

func (PatientProfile) Role() Role { return RolePatient }

// DoctorProfile is the representation of a doctor account.
type DoctorProfile struct {
	ID             string     `json:"id"`
	User           PublicUser `json:"user"`
	Specialization string     `json:"specialization"`
}

func (DoctorProfile) Role() Role { return RoleDoctor }
