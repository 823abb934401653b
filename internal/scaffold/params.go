package scaffold

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidParams wraps every intake validation failure.
var ErrInvalidParams = errors.New("invalid scaffold parameters")

// OtherApplet is the applet choice that asks for a new applet named in Other.
const OtherApplet = "other"

// Params are the operator's choices for one scaffold.
type Params struct {
	Table             string `json:"table" yaml:"table" form:"table" binding:"required" validate:"required"`
	ShortName         string `json:"short_name" yaml:"short_name" form:"short_name" binding:"required" validate:"required"`
	Applet            string `json:"applet" yaml:"applet" form:"applet" binding:"required" validate:"required"`
	Other             string `json:"other" yaml:"other" form:"other" validate:"required_if=Applet other"`
	Program           string `json:"program" yaml:"program" form:"program" binding:"required" validate:"required"`
	LabelField        string `json:"label_field" yaml:"label_field" form:"label_field"`
	SharedRepoName    string `json:"shared_repo_name" yaml:"shared_repo_name" form:"shared_repo_name"`
	NestedRouteParent string `json:"nested_route_parent" yaml:"nested_route_parent" form:"nested_route_parent"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Normalize strips surrounding whitespace from every field.
func (p *Params) Normalize() {
	for _, f := range []*string{
		&p.Table, &p.ShortName, &p.Applet, &p.Other, &p.Program,
		&p.LabelField, &p.SharedRepoName, &p.NestedRouteParent,
	} {
		*f = strings.TrimSpace(*f)
	}
}

// Validate normalizes p and checks the required fields.
func (p *Params) Validate() error {
	p.Normalize()
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required_if":
			msgs = append(msgs, fmt.Sprintf("%s must be filled when applet is %q", fe.Field(), OtherApplet))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidParams, strings.Join(msgs, "; "))
}
