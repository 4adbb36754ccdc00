package access

import (
	"errors"
	"fmt"

	"github.com/casbin/casbin"

	"roombooking/internal/domain"
)

var ErrForbidden = errors.New("not permitted")

// roleOwner is granted to a caller acting on a resource they own.
const roleOwner = "owner"

// Caller is the authenticated principal of a request.
type Caller struct {
	ID    int64
	Roles []domain.UserRole
}

func NewCaller(id int64, roles ...domain.UserRole) Caller {
	return Caller{ID: id, Roles: roles}
}

func (c Caller) HasRole(role domain.UserRole) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (c Caller) IsStaff() bool {
	for _, r := range c.Roles {
		if r.IsStaff() {
			return true
		}
	}
	return false
}

// Operation is an (object, action) pair checked against the policy.
type Operation struct {
	Object string
	Action string
}

func (o Operation) String() string { return o.Object + ":" + o.Action }

var (
	BookingCreate          = Operation{"booking", "create"}
	BookingView            = Operation{"booking", "view"}
	BookingListAll         = Operation{"booking", "list"}
	BookingConfirm         = Operation{"booking", "confirm"}
	BookingCheckIn         = Operation{"booking", "check_in"}
	BookingCheckOut        = Operation{"booking", "check_out"}
	BookingRequestPostpone = Operation{"booking", "request_postpone"}
	BookingApprovePostpone = Operation{"booking", "approve_postpone"}
	BookingRejectPostpone  = Operation{"booking", "reject_postpone"}
	BookingCancel          = Operation{"booking", "cancel"}
	BookingAdjustDiscount  = Operation{"booking", "adjust_discount"}

	PaymentSubmit = Operation{"payment", "submit"}
	PaymentView   = Operation{"payment", "view"}
	PaymentList   = Operation{"payment", "list"}
	PaymentReview = Operation{"payment", "review"}

	PaymentMethodManage = Operation{"payment_method", "manage"}

	RentalManage = Operation{"rental", "manage"}
	ReportView   = Operation{"report", "view"}
	RoomManage   = Operation{"room", "manage"}
	FeedWatch    = Operation{"feed", "watch"}
)

// Resource describes the target of an operation. OwnerID is zero when the
// resource has no owner.
type Resource struct {
	OwnerID int64
}

func Owned(ownerID int64) Resource { return Resource{OwnerID: ownerID} }

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

var staffOperations = []Operation{
	BookingView, BookingListAll, BookingConfirm, BookingCheckIn, BookingCheckOut,
	BookingApprovePostpone, BookingRejectPostpone, BookingCancel, BookingAdjustDiscount,
	PaymentView, PaymentList, PaymentReview,
	RentalManage, ReportView, FeedWatch,
}

// DefaultPolicy is the role table of the service.
func DefaultPolicy() map[string][]Operation {
	admin := append([]Operation{RoomManage, PaymentMethodManage}, staffOperations...)
	return map[string][]Operation{
		string(domain.RoleCustomer): {BookingCreate},
		string(domain.RoleStaff):    append([]Operation{BookingCreate}, staffOperations...),
		string(domain.RoleAdmin):    append([]Operation{BookingCreate}, admin...),
		roleOwner:                   {BookingView, BookingRequestPostpone, BookingCancel, PaymentSubmit, PaymentView},
	}
}

// Authorizer answers "may caller run operation on resource" from a casbin policy.
type Authorizer struct {
	enforcer *casbin.Enforcer
}

func NewAuthorizer() (*Authorizer, error) {
	return NewAuthorizerWithPolicy(DefaultPolicy())
}

func NewAuthorizerWithPolicy(policy map[string][]Operation) (*Authorizer, error) {
	e, err := casbin.NewEnforcerSafe(casbin.NewModel(modelText))
	if err != nil {
		return nil, fmt.Errorf("init casbin enforcer: %w", err)
	}
	e.EnableLog(false)
	for role, ops := range policy {
		for _, op := range ops {
			e.AddPolicy(role, op.Object, op.Action)
		}
	}
	return &Authorizer{enforcer: e}, nil
}

// Authorize returns nil when any of the caller's roles, or ownership of the
// resource, grants the operation; ErrForbidden otherwise.
func (a *Authorizer) Authorize(op Operation, caller Caller, res Resource) error {
	if caller.ID == 0 {
		return ErrForbidden
	}

	subjects := make([]string, 0, len(caller.Roles)+1)
	for _, r := range caller.Roles {
		subjects = append(subjects, string(r))
	}
	if res.OwnerID != 0 && res.OwnerID == caller.ID {
		subjects = append(subjects, roleOwner)
	}

	for _, sub := range subjects {
		ok, err := a.enforcer.EnforceSafe(sub, op.Object, op.Action)
		if err != nil {
			return fmt.Errorf("authorize %s: %w", op, err)
		}
		if ok {
			return nil
		}
	}
	return ErrForbidden
}
