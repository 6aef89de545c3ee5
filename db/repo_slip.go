package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Gin_postgres_redis_inventory/api"
	"Gin_postgres_redis_inventory/models"
	"Gin_postgres_redis_inventory/slip"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var forUpdate = clause.Locking{Strength: "UPDATE"}

func returnKind(f slip.Family) slip.Kind {
	if f == slip.Maintenance {
		return slip.MaintenanceReturnSlip
	}
	return slip.ReturnSlip
}

func counterpartyColumn(f slip.Family) string {
	if f == slip.Maintenance {
		return "partner_id"
	}
	return "borrower_id"
}

// LS-20260301-3FA2C1
func newSlipCode(f slip.Family, now time.Time) string {
	prefix := "LS"
	if f == slip.Maintenance {
		prefix = "MS"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix)
}

// 锁住设备并占用：不存在 404，停用/已占用 409，重复 422
func reserveDevices(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return slip.NewError(slip.ErrNoDevices, "")
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return slip.NewError(slip.ErrAlreadyAdded, id)
		}
		seen[id] = true
	}

	var ds []models.Device
	if err := tx.Clauses(forUpdate).
		Where("id IN ?", ids).
		Order("id").
		Find(&ds).Error; err != nil {
		return err
	}
	found := make(map[string]models.Device, len(ds))
	for _, d := range ds {
		found[d.ID] = d
	}
	for _, id := range ids {
		d, ok := found[id]
		if !ok {
			return fmt.Errorf("%w: device %s", ErrNotFound, id)
		}
		if !d.Active {
			return fmt.Errorf("%w: device %s is inactive", ErrConflict, id)
		}
		if d.InUse {
			return fmt.Errorf("%w: device %s is already on an open slip", ErrConflict, id)
		}
	}
	return tx.Model(&models.Device{}).
		Where("id IN ?", ids).
		Update("in_use", true).Error
}

func releaseDevices(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Model(&models.Device{}).
		Where("id IN ?", ids).
		Update("in_use", false).Error
}

func requireRows(tx *gorm.DB, table, what string, ids ...string) error {
	for _, id := range ids {
		var n int64
		if err := tx.Table(table).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
		}
	}
	return nil
}

func insertDetails(tx *gorm.DB, f slip.Family, slipID string, ids []string, notes map[string]string) error {
	rows := make([]models.SlipDetail, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.SlipDetail{
			ID:       uuid.NewString(),
			SlipID:   slipID,
			DeviceID: id,
			Status:   slip.Outgoing,
			Open:     true,
			Note:     notes[id],
		})
	}
	if err := tx.Table(models.TablesOf(f).Detail).Create(&rows).Error; err != nil {
		return conflict(err, "device already on an open slip")
	}
	return nil
}

// 新建借用单：校验人 → 锁设备并占用 → 单头 → 明细
func (r *Repo) CreateLoanSlip(ctx context.Context, createdBy string, req api.CreateLoanSlipReq) (*api.Slip, error) {
	var out *api.Slip
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRows(tx, models.UserTable, "user", req.BorrowerID, req.LoanerID); err != nil {
			return err
		}
		if err := reserveDevices(tx, req.DeviceIDs); err != nil {
			return err
		}
		now := time.Now().UTC()
		h := models.LoanSlip{
			SlipHeader: models.SlipHeader{
				ID:          uuid.NewString(),
				Code:        newSlipCode(slip.Loan, now),
				Status:      slip.Active,
				CreatedByID: createdBy,
			},
			BorrowerID: req.BorrowerID,
			LoanerID:   req.LoanerID,
		}
		if err := tx.Create(&h).Error; err != nil {
			return conflict(err, "slip code taken")
		}
		if err := insertDetails(tx, slip.Loan, h.ID, req.DeviceIDs, nil); err != nil {
			return err
		}
		s, err := loadSlipDTO(tx, slip.Loan, h.ID)
		out = s
		return err
	})
	return out, err
}

// 新建维修单：合作方可空；每台设备可带备注
func (r *Repo) CreateMaintenanceSlip(ctx context.Context, createdBy string, req api.CreateMaintenanceSlipReq) (*api.Slip, error) {
	ids := make([]string, 0, len(req.Devices))
	notes := make(map[string]string, len(req.Devices))
	for _, d := range req.Devices {
		ids = append(ids, d.DeviceID)
		notes[d.DeviceID] = d.Note
	}

	var out *api.Slip
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.PartnerID != nil {
			if err := requireRows(tx, models.PartnerTable, "partner", *req.PartnerID); err != nil {
				return err
			}
		}
		if err := reserveDevices(tx, ids); err != nil {
			return err
		}
		now := time.Now().UTC()
		h := models.MaintenanceSlip{
			SlipHeader: models.SlipHeader{
				ID:          uuid.NewString(),
				Code:        newSlipCode(slip.Maintenance, now),
				Status:      slip.Active,
				CreatedByID: createdBy,
			},
			PartnerID: req.PartnerID,
			Reason:    strings.TrimSpace(req.Reason),
		}
		if req.RequestDate != nil {
			d := datatypes.Date(*req.RequestDate)
			h.RequestDate = &d
		}
		if err := tx.Create(&h).Error; err != nil {
			return conflict(err, "slip code taken")
		}
		if err := insertDetails(tx, slip.Maintenance, h.ID, ids, notes); err != nil {
			return err
		}
		s, err := loadSlipDTO(tx, slip.Maintenance, h.ID)
		out = s
		return err
	})
	return out, err
}

// 锁住单头和明细，还原成 slip.Slip
func lockSlip(tx *gorm.DB, f slip.Family, id string) (*models.SlipHeader, []models.SlipDetail, error) {
	t := models.TablesOf(f)
	var h models.SlipHeader
	if err := tx.Table(t.Header).Clauses(forUpdate).
		Where("id = ?", id).
		Take(&h).Error; err != nil {
		return nil, nil, notFound(err, f.Parent().String()+" slip", id)
	}
	var ds []models.SlipDetail
	if err := tx.Table(t.Detail).Clauses(forUpdate).
		Where("slip_id = ?", id).
		Order("created_at ASC, id ASC").
		Find(&ds).Error; err != nil {
		return nil, nil, err
	}
	return &h, ds, nil
}

func toAggregate(h *models.SlipHeader, ds []models.SlipDetail) *slip.Slip {
	s := &slip.Slip{Status: h.Status, Details: make([]slip.Detail, 0, len(ds))}
	for _, d := range ds {
		s.Details = append(s.Details, slip.Detail{
			DeviceID:   d.DeviceID,
			Status:     d.Status,
			ResolvedAt: d.ResolvedAt,
			Note:       d.Note,
		})
	}
	return s
}

// 归还 / 维修归还：全部校验通过才落库
func (r *Repo) ApplyReturn(ctx context.Context, f slip.Family, parentID, createdBy string, items []api.ReturnItem) (*api.ReturnDoc, error) {
	t := models.TablesOf(f)
	var out *api.ReturnDoc
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		h, ds, err := lockSlip(tx, f, parentID)
		if err != nil {
			return err
		}
		agg := toAggregate(h, ds)

		ri := make([]slip.ReturnItem, 0, len(items))
		ids := make([]string, 0, len(items))
		for _, it := range items {
			ri = append(ri, slip.ReturnItem{DeviceID: it.DeviceID, Status: it.Status, Note: strings.TrimSpace(it.Note)})
			ids = append(ids, it.DeviceID)
		}
		now := time.Now().UTC()
		if err := agg.ApplyReturn(ri, now); err != nil {
			return err
		}

		doc := models.ReturnHeader{
			ID:          uuid.NewString(),
			ParentID:    parentID,
			Status:      slip.Returned,
			CreatedByID: createdBy,
		}
		if err := tx.Table(t.Return).Create(&doc).Error; err != nil {
			return err
		}
		rows := make([]models.ReturnDetail, 0, len(ri))
		for _, it := range ri {
			rows = append(rows, models.ReturnDetail{
				ID:       uuid.NewString(),
				ReturnID: doc.ID,
				DeviceID: it.DeviceID,
				Status:   it.Status,
				Note:     it.Note,
			})
		}
		if err := tx.Table(t.ReturnDetail).Create(&rows).Error; err != nil {
			return err
		}

		// 回填父单明细
		for _, it := range ri {
			if err := tx.Table(t.Detail).
				Where("slip_id = ? AND device_id = ? AND open", parentID, it.DeviceID).
				Updates(map[string]any{
					"status":         it.Status,
					"note":           it.Note,
					"resolved_at":    now,
					"resolved_by_id": doc.ID,
					"open":           false,
					"updated_at":     now,
				}).Error; err != nil {
				return err
			}
		}
		if err := releaseDevices(tx, ids); err != nil {
			return err
		}
		if err := tx.Table(t.Header).Where("id = ?", parentID).
			Updates(map[string]any{"status": agg.Status, "updated_at": now}).Error; err != nil {
			return err
		}

		out = &api.ReturnDoc{
			ID:           doc.ID,
			ParentID:     parentID,
			Status:       doc.Status,
			StatusLabel:  slip.LabelsFor(returnKind(f)).ReturnStatus(doc.Status),
			CreatedAt:    now,
			DeviceCount:  len(rows),
			ParentStatus: agg.Status,
		}
		return nil
	})
	return out, err
}

// CancelSlip cancels any of the four document kinds.
func (r *Repo) CancelSlip(ctx context.Context, kind slip.Kind, id string) error {
	if kind.IsReturn() {
		return r.cancelReturnDoc(ctx, kind.Family(), id)
	}
	return r.cancelParent(ctx, kind.Family(), id)
}

// 作废父单：未归还的明细只释放设备，状态保持不动
func (r *Repo) cancelParent(ctx context.Context, f slip.Family, id string) error {
	t := models.TablesOf(f)
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		h, ds, err := lockSlip(tx, f, id)
		if err != nil {
			return err
		}
		if err := toAggregate(h, ds).Cancel(); err != nil {
			return err
		}
		var held []string
		for _, d := range ds {
			if d.Open {
				held = append(held, d.DeviceID)
			}
		}
		now := time.Now().UTC()
		if err := tx.Table(t.Header).Where("id = ?", id).
			Updates(map[string]any{"status": slip.Cancelled, "cancelled_at": now, "updated_at": now}).Error; err != nil {
			return err
		}
		if err := tx.Table(t.Detail).
			Where("slip_id = ? AND open", id).
			Updates(map[string]any{"open": false, "updated_at": now}).Error; err != nil {
			return err
		}
		return releaseDevices(tx, held)
	})
}

// 作废归还单：只改单据本身，已回填的明细不回滚
func (r *Repo) cancelReturnDoc(ctx context.Context, f slip.Family, id string) error {
	t := models.TablesOf(f)
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var h models.ReturnHeader
		if err := tx.Table(t.Return).Clauses(forUpdate).
			Where("id = ?", id).
			Take(&h).Error; err != nil {
			return notFound(err, returnKind(f).String()+" slip", id)
		}
		st, err := slip.CancelReturn(h.Status)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		return tx.Table(t.Return).Where("id = ?", id).
			Updates(map[string]any{"status": st, "cancelled_at": now, "updated_at": now}).Error
	})
}

// 父单列表；openOnly 只要还能归还的
func (r *Repo) ListSlips(ctx context.Context, f slip.Family, openOnly bool) ([]slip.ParentSummary, error) {
	q := r.DB.WithContext(ctx).
		Table(models.TablesOf(f).Header).
		Select("id, code, status")
	if openOnly {
		q = q.Where("status IN ?", []slip.Status{slip.Active, slip.Partial})
	}
	out := []slip.ParentSummary{}
	if err := q.Order("created_at DESC").Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// 父单里还能归还的明细
func (r *Repo) ListResolvableDetails(ctx context.Context, f slip.Family, parentID string) ([]slip.OpenDetail, error) {
	t := models.TablesOf(f)
	db := r.DB.WithContext(ctx)
	if err := requireRows(db, t.Header, f.Parent().String()+" slip", parentID); err != nil {
		return nil, err
	}
	out := []slip.OpenDetail{}
	if err := db.Table(t.Detail+" AS x").
		Select("d.id AS device_id, d.device_type_id, d.name, d.serial, x.status").
		Joins("JOIN "+models.DeviceTable+" d ON d.id = x.device_id").
		Where("x.slip_id = ? AND x.status = ? AND x.open", parentID, slip.Outgoing).
		Order("x.created_at ASC, x.id ASC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetSlip(ctx context.Context, f slip.Family, id string) (*api.Slip, error) {
	return loadSlipDTO(r.DB.WithContext(ctx), f, id)
}

type detailRow struct {
	models.SlipDetail
	DeviceTypeID string
	DeviceName   string
	Serial       string
}

func loadSlipDTO(tx *gorm.DB, f slip.Family, id string) (*api.Slip, error) {
	t := models.TablesOf(f)
	kind := f.Parent()
	labels := slip.LabelsFor(kind)

	var h models.SlipHeader
	if err := tx.Table(t.Header).Where("id = ?", id).Take(&h).Error; err != nil {
		return nil, notFound(err, kind.String()+" slip", id)
	}
	var cp struct{ ID *string }
	if err := tx.Table(t.Header).
		Select(counterpartyColumn(f)+" AS id").
		Where("id = ?", id).
		Scan(&cp).Error; err != nil {
		return nil, err
	}

	var rows []detailRow
	if err := tx.Table(t.Detail+" AS x").
		Select("x.*, d.device_type_id, d.name AS device_name, d.serial").
		Joins("JOIN "+models.DeviceTable+" d ON d.id = x.device_id").
		Where("x.slip_id = ?", id).
		Order("x.created_at ASC, x.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := &api.Slip{
		ID:             h.ID,
		Code:           h.Code,
		Kind:           kind.String(),
		Status:         h.Status,
		StatusLabel:    labels.Status(h.Status),
		CounterpartyID: cp.ID,
		CreatedAt:      h.CreatedAt,
		Details:        make([]api.SlipDetail, 0, len(rows)),
	}
	// 维修单额外带上原因和申请日期
	if f == slip.Maintenance {
		var m models.MaintenanceSlip
		if err := tx.Select("reason", "request_date").Where("id = ?", id).Take(&m).Error; err != nil {
			return nil, err
		}
		out.Reason = m.Reason
		if m.RequestDate != nil {
			d := time.Time(*m.RequestDate)
			out.RequestDate = &d
		}
	}
	for _, d := range rows {
		out.Details = append(out.Details, api.SlipDetail{
			ID:           d.ID,
			DeviceID:     d.DeviceID,
			DeviceTypeID: d.DeviceTypeID,
			DeviceName:   d.DeviceName,
			Serial:       d.Serial,
			Status:       d.Status,
			StatusLabel:  labels.Detail(d.Status),
			ResolvedAt:   d.ResolvedAt,
			Note:         d.Note,
			ResolvedBy:   d.ResolvedByID,
		})
	}
	return out, nil
}

// 归还单详情，带上父单当前状态
func (r *Repo) GetReturnDoc(ctx context.Context, f slip.Family, id string) (*api.ReturnDoc, error) {
	t := models.TablesOf(f)
	db := r.DB.WithContext(ctx)

	var h models.ReturnHeader
	if err := db.Table(t.Return).Where("id = ?", id).Take(&h).Error; err != nil {
		return nil, notFound(err, returnKind(f).String()+" slip", id)
	}
	var n int64
	if err := db.Table(t.ReturnDetail).Where("return_id = ?", id).Count(&n).Error; err != nil {
		return nil, err
	}
	var parent slip.Status
	if err := db.Table(t.Header).Select("status").Where("id = ?", h.ParentID).Scan(&parent).Error; err != nil {
		return nil, err
	}
	return &api.ReturnDoc{
		ID:           h.ID,
		ParentID:     h.ParentID,
		Status:       h.Status,
		StatusLabel:  slip.LabelsFor(returnKind(f)).ReturnStatus(h.Status),
		CreatedAt:    h.CreatedAt,
		DeviceCount:  int(n),
		ParentStatus: parent,
	}, nil
}
