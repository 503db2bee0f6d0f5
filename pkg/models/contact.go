package models

import "time"

// ContactLead is a general contact-form inquiry, stored in the leads partition
type ContactLead struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Organization string    `json:"organization"`
	Objective    string    `json:"objective"`
	Message      string    `json:"message"`
	IP           string    `json:"ip,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// GetID satisfies the store's keyed record constraint
func (c *ContactLead) GetID() string { return c.ID }

// Clone returns a copy of c
func (c *ContactLead) Clone() *ContactLead {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// ContactRequest is the body of POST /api/contact
type ContactRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=200"`
	Email        string `json:"email" validate:"required,email"`
	Organization string `json:"organization" validate:"required,max=200"`
	Objective    string `json:"objective" validate:"required,max=200"`
	Message      string `json:"message" validate:"required,min=1,max=5000"`
}
