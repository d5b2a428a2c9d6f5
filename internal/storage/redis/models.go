package redis

// UserState is the per-chat dialog state kept between bot updates.
type UserState struct {
	Step     string    `json:"step"`
	Userdata *UserData `json:"user_data,omitempty"`
	Draft    *Draft    `json:"draft,omitempty"`
}

type UserData struct {
	PhoneNumber *string `json:"phone_number,omitempty"`
	Username    *string `json:"username,omitempty"`
}

// Draft is the estimate form as filled so far.
type Draft struct {
	// room dimensions, meters
	Length *float64 `json:"length,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`

	CabinetType *string `json:"cabinet_type,omitempty"`
	Material    *string `json:"material,omitempty"`

	// set once the estimate has been shown
	TotalPrice *int64 `json:"total_price,omitempty"`
}

// Complete reports whether every form field has been provided.
func (d *Draft) Complete() bool {
	return d != nil &&
		d.Length != nil && d.Width != nil && d.Height != nil &&
		d.CabinetType != nil && d.Material != nil
}
