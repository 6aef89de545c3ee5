package db

import (
	"context"
	"fmt"
	"strings"

	"Gin_postgres_redis_inventory/api"
	"Gin_postgres_redis_inventory/grid"
	"Gin_postgres_redis_inventory/models"
	"Gin_postgres_redis_inventory/slip"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Devices

// 可借：启用、未占用、且没有任何未关闭的借用/维修明细
func (r *Repo) ListAvailableDevices(ctx context.Context, deviceTypeID string, quantity int) ([]slip.Candidate, error) {
	q := r.DB.WithContext(ctx).
		Table(models.DeviceTable+" AS d").
		Select("d.id AS device_id, d.device_type_id, d.name, d.serial").
		Where("d.active AND NOT d.in_use")
	for _, t := range []string{models.LoanSlipDetailTable, models.MaintenanceSlipDetailTable} {
		q = q.Where(fmt.Sprintf("NOT EXISTS (SELECT 1 FROM %s x WHERE x.device_id = d.id AND x.open)", t))
	}
	if deviceTypeID = strings.TrimSpace(deviceTypeID); deviceTypeID != "" {
		q = q.Where("d.device_type_id = ?", deviceTypeID)
	}
	if quantity > 0 {
		q = q.Limit(quantity)
	}

	out := []slip.Candidate{}
	if err := q.Order("d.name ASC, d.serial ASC").Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) FindDeviceByID(ctx context.Context, id string) (*models.Device, error) {
	var d models.Device
	if err := r.DB.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "device", id)
	}
	return &d, nil
}

// Racks

func (r *Repo) GetRack(ctx context.Context, id string) (*api.Rack, error) {
	var rk models.Rack
	if err := r.DB.WithContext(ctx).First(&rk, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "rack", id)
	}
	return &api.Rack{ID: rk.ID, Code: rk.Code, Name: rk.Name, Rows: rk.Rows, Cols: rk.Cols}, nil
}

// 位置列表（分页 + 可选标签过滤），每行带上占用的设备
func (r *Repo) ListRackLocations(ctx context.Context, rackID string, page, size int, label string) (api.LocationPage, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 500 {
		size = 200
	}
	if _, err := r.GetRack(ctx, rackID); err != nil {
		return api.LocationPage{}, err
	}

	tx := r.DB.WithContext(ctx).
		Table(models.RackLocationTable+" AS l").
		Where("l.rack_id = ?", rackID)
	if label = strings.TrimSpace(label); label != "" {
		c, err := grid.LabelCell(label)
		if err != nil {
			return api.LocationPage{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		tx = tx.Where("l.x_position = ? AND l.y_position = ?", c.Row, c.Col)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return api.LocationPage{}, err
	}

	rows := []api.LocationRow{}
	if err := tx.
		Select(`l.id, l.rack_id, l.x_position AS x, l.y_position AS y, l.active,
			d.id AS device_id, d.name AS device_name`).
		Joins("LEFT JOIN " + models.DeviceTable + " d ON d.location_id = l.id").
		Order("l.x_position ASC, l.y_position ASC").
		Offset((page - 1) * size).
		Limit(size).
		Scan(&rows).Error; err != nil {
		return api.LocationPage{}, err
	}
	for i := range rows {
		rows[i].Label, _ = grid.CellLabel(grid.Cell{Row: rows[i].X, Col: rows[i].Y})
	}
	return api.LocationPage{Total: total, Items: rows}, nil
}

// 已存在则直接返回，否则新建；并发下靠 idx_rack_cell 兜底
func (r *Repo) FindOrCreateRackLocation(ctx context.Context, rackID string, x, y int) (*api.LocationRow, error) {
	rk, err := r.GetRack(ctx, rackID)
	if err != nil {
		return nil, err
	}
	if !grid.New(rk.Rows, rk.Cols).Contains(grid.Cell{Row: x, Col: y}) {
		return nil, fmt.Errorf("%w: cell (%d,%d) outside %dx%d rack", ErrValidation, x, y, rk.Rows, rk.Cols)
	}

	loc := models.RackLocation{ID: uuid.NewString(), RackID: rackID, X: x, Y: y, Active: true}
	db := r.DB.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&loc).Error; err != nil {
		return nil, err
	}
	// 冲突时 loc.ID 不是库里那条，重新按格子查
	loc = models.RackLocation{}
	if err := db.Where("rack_id = ? AND x_position = ? AND y_position = ?", rackID, x, y).
		First(&loc).Error; err != nil {
		return nil, err
	}
	row := &api.LocationRow{ID: loc.ID, RackID: loc.RackID, X: loc.X, Y: loc.Y, Active: loc.Active}
	row.Label, _ = grid.CellLabel(grid.Cell{Row: loc.X, Col: loc.Y})
	return row, nil
}

// LocationChange reports which racks a device move touched, for cache
// invalidation.
type LocationChange struct {
	Device    *api.Device
	OldRackID string
	NewRackID string
}

// 改设备位置：锁设备 → 锁目标位置 → 目标被别的设备占用则 409
func (r *Repo) UpdateDeviceLocation(ctx context.Context, deviceID string, locationID *string) (*LocationChange, error) {
	var ch LocationChange
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d models.Device
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&d, "id = ?", deviceID).Error; err != nil {
			return notFound(err, "device", deviceID)
		}
		if d.LocationID != nil {
			if err := tx.Model(&models.RackLocation{}).
				Select("rack_id").Where("id = ?", *d.LocationID).
				Scan(&ch.OldRackID).Error; err != nil {
				return err
			}
		}

		if locationID != nil {
			var loc models.RackLocation
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&loc, "id = ?", *locationID).Error; err != nil {
				return notFound(err, "location", *locationID)
			}
			var holder string
			if err := tx.Model(&models.Device{}).
				Select("id").
				Where("location_id = ? AND id <> ?", loc.ID, d.ID).
				Limit(1).
				Scan(&holder).Error; err != nil {
				return err
			}
			if holder != "" {
				return fmt.Errorf("%w: location %s is held by device %s", ErrConflict, loc.ID, holder)
			}
			ch.NewRackID = loc.RackID
		}

		if err := tx.Model(&d).Update("location_id", locationID).Error; err != nil {
			return conflict(err, "location already taken")
		}
		d.LocationID = locationID
		ch.Device = deviceDTO(&d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func deviceDTO(d *models.Device) *api.Device {
	return &api.Device{
		ID:           d.ID,
		Name:         d.Name,
		Serial:       d.Serial,
		Model:        d.Model,
		DeviceTypeID: d.DeviceTypeID,
		LocationID:   d.LocationID,
		Active:       d.Active,
		InUse:        d.InUse,
	}
}
