package razorpay

// CheckoutPrefill pre-populates payer fields in the checkout widget.
type CheckoutPrefill struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// CheckoutTheme customizes the checkout widget appearance.
type CheckoutTheme struct {
	Color string `json:"color,omitempty"`
}

// CheckoutOptions is the option object the client-side checkout widget is
// opened with. The key is the public key ID; the secret never leaves the
// server.
type CheckoutOptions struct {
	Key         string           `json:"key"`
	Amount      int64            `json:"amount"`
	Currency    string           `json:"currency"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Image       string           `json:"image,omitempty"`
	OrderID     string           `json:"order_id"`
	Prefill     *CheckoutPrefill `json:"prefill,omitempty"`
	Theme       CheckoutTheme    `json:"theme"`
}

// CheckoutParams are the inputs for building checkout options.
type CheckoutParams struct {
	KeyID       string
	Amount      int64
	Currency    string
	OrderID     string
	Name        string
	Description string
	Image       string
	Prefill     *CheckoutPrefill
	ThemeColor  string
}

// BuildCheckoutOptions assembles the widget options for a created order.
func BuildCheckoutOptions(params CheckoutParams) *CheckoutOptions {
	color := params.ThemeColor
	if color == "" {
		color = "#3399cc"
	}
	return &CheckoutOptions{
		Key:         params.KeyID,
		Amount:      params.Amount,
		Currency:    params.Currency,
		Name:        params.Name,
		Description: params.Description,
		Image:       params.Image,
		OrderID:     params.OrderID,
		Prefill:     params.Prefill,
		Theme:       CheckoutTheme{Color: color},
	}
}
