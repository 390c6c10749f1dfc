package payment

// ChargeRequest is the payload sent to the AppyPay charge endpoint.
type ChargeRequest struct {
	Amount                float64 `json:"amount"`
	Currency              string  `json:"currency"`
	Description           string  `json:"description,omitempty"`
	MerchantTransactionID string  `json:"merchantTransactionId"`
	PaymentMethod         string  `json:"paymentMethod"`
}

// ChargeResponse is what the gateway returns on charge creation. The
// entity/reference pair is what the customer pays against.
type ChargeResponse struct {
	ID              string `json:"id"`
	Entity          string `json:"entity"`
	ReferenceNumber string `json:"referenceNumber"`
	ResponseStatus  *struct {
		Status  string `json:"status"`
		Message string `json:"message,omitempty"`
	} `json:"responseStatus,omitempty"`
}

// tokenResponse is the OAuth client-credentials grant response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// WebhookPayload is the asynchronous payment-status callback. The
// gateway sometimes nests the status under responseStatus and the
// merchant transaction id under reference, so both spellings are read.
type WebhookPayload struct {
	MerchantTransactionID string `json:"merchantTransactionId"`
	Status                string `json:"status"`
	Reference             string `json:"reference,omitempty"`
	ResponseStatus        *struct {
		Status string `json:"status"`
	} `json:"responseStatus,omitempty"`
}

// EffectiveTransactionID prefers the explicit merchant transaction id
// and falls back to the reference field.
func (p WebhookPayload) EffectiveTransactionID() string {
	if p.MerchantTransactionID != "" {
		return p.MerchantTransactionID
	}
	return p.Reference
}

// EffectiveStatus prefers the top-level status and falls back to the
// nested responseStatus.status.
func (p WebhookPayload) EffectiveStatus() string {
	if p.Status != "" {
		return p.Status
	}
	if p.ResponseStatus != nil {
		return p.ResponseStatus.Status
	}
	return ""
}

// WebhookResult reports what a webhook delivery did.
type WebhookResult struct {
	MerchantTransactionID string `json:"merchant_transaction_id"`
	Status                string `json:"status"`
	Transitioned          bool   `json:"transitioned"`
	ItemsDecremented      int    `json:"items_decremented"`
}
