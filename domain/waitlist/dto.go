package waitlist

// SignupRequest carries the raw form value; shape checks belong to the SignupController.
type SignupRequest struct {
	Email string `json:"email" binding:"max=1024"`
}

type InputRequest struct {
	Email string `json:"email" binding:"max=1024"`
}

type SignupResponse struct {
	Status SubmitStatus    `json:"status"`
	State  SubmissionState `json:"state"`
}

type StateResponse struct {
	State SubmissionState `json:"state"`
}
