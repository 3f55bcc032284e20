package gateway

// Wire types for the CloudPayments-style API. Transaction ids are numeric on
// the wire; amounts are decimal.

type confirmRequest struct {
	TransactionID int64    `json:"TransactionId"`
	Amount        *float64 `json:"Amount,omitempty"`
}

type voidRequest struct {
	TransactionID int64 `json:"TransactionId"`
}

type refundRequest struct {
	TransactionID int64   `json:"TransactionId"`
	Amount        float64 `json:"Amount"`
}

type apiResponse struct {
	Success bool   `json:"Success"`
	Message string `json:"Message"`
}
