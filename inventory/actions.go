package inventory

import (
	"context"
	"fmt"
	"time"

	"Gin_postgres_redis_inventory/api"
	"Gin_postgres_redis_inventory/slip"
)

// Actions are the slip operations offered to the UI. Each one checks its
// guard conditions locally and only then calls the backend.
type Actions struct {
	b Backend
}

func NewActions(b Backend) *Actions { return &Actions{b: b} }

// LoadDeviceCandidates fetches available devices and drops those already on
// the slip being built.
func (a *Actions) LoadDeviceCandidates(ctx context.Context, deviceTypeID string, quantity int, staged *slip.Staging) ([]slip.Candidate, error) {
	pool, err := a.b.ListAvailableDevices(ctx, deviceTypeID, quantity)
	if err != nil {
		return nil, fmt.Errorf("list available devices: %w", err)
	}
	return slip.ExcludeStaged(pool, staged), nil
}

// LoadSwapCandidates lists same-type devices that can replace a staged one.
func (a *Actions) LoadSwapCandidates(ctx context.Context, staged *slip.Staging, replacing string) ([]slip.Candidate, error) {
	it, err := staged.Item(replacing)
	if err != nil {
		return nil, err
	}
	pool, err := a.b.ListAvailableDevices(ctx, it.DeviceTypeID, 0)
	if err != nil {
		return nil, fmt.Errorf("list available devices: %w", err)
	}
	return slip.SwapCandidates(pool, staged, replacing)
}

// LoadParents lists slips that still accept returns.
func (a *Actions) LoadParents(ctx context.Context, family slip.Family) ([]slip.ParentSummary, error) {
	ps, err := a.b.ListAvailableParentSlips(ctx, family)
	if err != nil {
		return nil, fmt.Errorf("list %s slips: %w", family, err)
	}
	return slip.EligibleParents(ps), nil
}

// LoadResolvable lists the outgoing rows of a parent slip together with an
// unchecked checklist over them.
func (a *Actions) LoadResolvable(ctx context.Context, family slip.Family, parentID string) ([]slip.OpenDetail, *slip.Checklist, error) {
	ds, err := a.b.ListResolvableDetails(ctx, family, parentID)
	if err != nil {
		return nil, nil, fmt.Errorf("list resolvable details of %s: %w", parentID, err)
	}
	ds = slip.ResolvableDetails(ds)
	ids := make([]string, len(ds))
	for i, d := range ds {
		ids[i] = d.DeviceID
	}
	return ds, slip.NewChecklist(ids), nil
}

func (a *Actions) SubmitLoan(ctx context.Context, borrowerID, loanerID string, staged *slip.Staging) (*api.Slip, error) {
	if err := staged.Validate(); err != nil {
		return nil, err
	}
	return a.b.CreateLoanSlip(ctx, api.CreateLoanSlipReq{
		BorrowerID: borrowerID,
		LoanerID:   loanerID,
		DeviceIDs:  staged.DeviceIDs(),
	})
}

// MaintenanceHeader is the optional header of a maintenance slip.
type MaintenanceHeader struct {
	PartnerID   *string
	Reason      string
	RequestDate *time.Time
}

func (a *Actions) SubmitMaintenance(ctx context.Context, h MaintenanceHeader, staged *slip.Staging) (*api.Slip, error) {
	if err := staged.Validate(); err != nil {
		return nil, err
	}
	req := api.CreateMaintenanceSlipReq{
		PartnerID:   h.PartnerID,
		Reason:      h.Reason,
		RequestDate: h.RequestDate,
	}
	for _, it := range staged.Items() {
		req.Devices = append(req.Devices, api.MaintenanceDevice{DeviceID: it.DeviceID, Note: it.Note})
	}
	return a.b.CreateMaintenanceSlip(ctx, req)
}

// ReturnChoice is the outcome picked for one checked device. A device
// checked without a choice resolves OK.
type ReturnChoice struct {
	Status slip.DetailStatus
	Note   string
}

func (a *Actions) SubmitReturn(ctx context.Context, parentID string, cl *slip.Checklist, choices map[string]ReturnChoice) error {
	return a.submitReturn(ctx, slip.Loan, parentID, cl, choices)
}

func (a *Actions) SubmitMaintenanceReturn(ctx context.Context, parentID string, cl *slip.Checklist, choices map[string]ReturnChoice) error {
	return a.submitReturn(ctx, slip.Maintenance, parentID, cl, choices)
}

func (a *Actions) submitReturn(ctx context.Context, family slip.Family, parentID string, cl *slip.Checklist, choices map[string]ReturnChoice) error {
	if err := cl.Validate(); err != nil {
		return err
	}
	ids := cl.Selected()
	items := make([]api.ReturnItem, 0, len(ids))
	for _, id := range ids {
		ch, ok := choices[id]
		if !ok || ch.Status == 0 {
			ch.Status = slip.ResolvedOK
		}
		if err := slip.CheckTransition(id, slip.Outgoing, ch.Status); err != nil {
			return err
		}
		items = append(items, api.ReturnItem{DeviceID: id, Status: ch.Status, Note: ch.Note})
	}
	return a.b.ApplyReturn(ctx, family, parentID, items)
}

// Cancel cancels a loan or maintenance slip whose last known status is st.
func (a *Actions) Cancel(ctx context.Context, kind slip.Kind, id string, st slip.Status) error {
	if kind != slip.LoanSlip && kind != slip.MaintenanceSlip {
		return ErrNotParentKind
	}
	s := slip.Slip{Status: st}
	if err := s.Cancel(); err != nil {
		return err
	}
	return a.b.CancelSlip(ctx, kind, id)
}

// CancelReturnDoc voids a return or maintenance-return document.
func (a *Actions) CancelReturnDoc(ctx context.Context, kind slip.Kind, id string, st slip.ReturnStatus) error {
	if !kind.IsReturn() {
		return ErrNotReturnKind
	}
	if _, err := slip.CancelReturn(st); err != nil {
		return err
	}
	return a.b.CancelSlip(ctx, kind, id)
}
