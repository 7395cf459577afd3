package backend

import (
	"context"
	"net/http"
	"net/url"
)

// ContractSession is the e-signature session the portal embeds in an iframe.
type ContractSession struct {
	ContractID string `json:"contractId"`
	SessionURL string `json:"sessionUrl"`
	Status     string `json:"status,omitempty"`
}

func (c Client) GetContract(ctx context.Context, bookingNumber string) (*ContractSession, error) {
	var out ContractSession
	if err := c.doJSON(ctx, "get-contract", http.MethodGet, bookingPath(bookingNumber)+"/contract", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c Client) GetContractByID(ctx context.Context, bookingNumber, contractID string) (*ContractSession, error) {
	var out ContractSession
	if err := c.doJSON(ctx, "get-contract", http.MethodGet, contractPath(bookingNumber, contractID), nil, &out); err != nil {
		return nil, err
	}
	if out.ContractID == "" {
		out.ContractID = contractID
	}
	return &out, nil
}

func (c Client) AcceptContract(ctx context.Context, bookingNumber, contractID string) error {
	return c.doJSON(ctx, "accept-contract", http.MethodPost, contractPath(bookingNumber, contractID)+"/accept", nil, nil)
}

func contractPath(bookingNumber, contractID string) string {
	return bookingPath(bookingNumber) + "/contract/" + url.PathEscape(contractID)
}
