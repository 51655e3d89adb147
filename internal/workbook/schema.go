package workbook

import (
	"stockroom/internal/models"
	"stockroom/internal/store"
)

// Sheet names and their fixed column order. Readers index columns by
// position, so the order here is the file format.
const (
	SheetUsers         = "Users"
	SheetMaterials     = "Materials"
	SheetMovements     = "Movements"
	SheetSuppliers     = "Suppliers"
	SheetOrders        = "Orders"
	SheetRequests      = "Requests"
	SheetBudget        = "Budget"
	SheetNotifications = "Notifications"
	SheetAuditLog      = "AuditLog"
	SheetLocations     = "Locations"
	SheetStockCounts   = "StockCounts"
)

var headers = map[string][]string{
	SheetUsers:         {"Username", "Password Hash", "Full Name", "Email", "Department", "Role", "Active", "Last Login"},
	SheetMaterials:     {"Code", "Name", "Category", "Unit", "Stock", "Min Level", "Max Level", "Location", "Shelf", "Barcode", "Unit Price", "Last Updated", "Last Counted"},
	SheetMovements:     {"Date", "Material Code", "Type", "Quantity", "Supplier/Receiver", "Description", "Order No", "Approver"},
	SheetSuppliers:     {"Code", "Name", "Contact Person", "Phone", "Email", "Address", "Category", "Rating", "Notes", "Last Order", "Order Count", "Active"},
	SheetOrders:        {"Order No", "Date", "Supplier Code", "Supplier Name", "Status", "Total Amount", "Created By", "Approved By", "Expected Delivery", "Delivered At", "Notes", "Lines"},
	SheetRequests:      {"Request No", "Date", "Material Code", "Material Name", "Quantity", "Priority", "Requester", "Department", "Status", "Approver", "Approved At", "Reject Reason", "Description"},
	SheetBudget:        {"Year", "Category", "Monthly Limit", "Annual Limit", "Used", "Remaining"},
	SheetNotifications: {"ID", "Date", "Recipient", "Type", "Title", "Message", "Link", "Read"},
	SheetAuditLog:      {"ID", "Date", "User", "Action", "Module", "Record Key", "Old Value", "New Value", "IP", "Metadata"},
	SheetLocations:     {"Code", "Name", "Address", "Manager", "Phone", "Active"},
	SheetStockCounts:   {"Count No", "Date", "Location", "Category", "Status", "Created By", "Completed By", "Completed At", "Description"},
}

var sheetOrder = []string{
	SheetUsers, SheetMaterials, SheetMovements, SheetSuppliers, SheetOrders, SheetRequests,
	SheetBudget, SheetNotifications, SheetAuditLog, SheetLocations, SheetStockCounts,
}

// sheetRows lays a snapshot out as rows per sheet.
func sheetRows(snap store.Snapshot) map[string][][]any {
	out := map[string][][]any{}
	for _, u := range snap.Users {
		out[SheetUsers] = append(out[SheetUsers], []any{u.Username, u.PasswordHash, u.FullName, u.Email, u.Department, string(u.Role), u.Active, formatTimePtr(u.LastLogin)})
	}
	for _, m := range snap.Materials {
		out[SheetMaterials] = append(out[SheetMaterials], []any{
			m.Code, m.Name, string(m.Category), string(m.Unit), m.Stock, m.MinLevel, m.MaxLevel,
			m.Location, m.Shelf, m.BarcodeString(), money(m.UnitPrice), formatTime(m.LastUpdated), formatTime(m.LastCounted),
		})
	}
	for _, mv := range snap.Movements {
		out[SheetMovements] = append(out[SheetMovements], []any{formatTime(mv.CreatedAt), mv.MaterialCode, string(mv.Type), mv.Quantity, mv.Counterparty, mv.Description, mv.OrderRef, mv.Approver})
	}
	for _, sp := range snap.Suppliers {
		out[SheetSuppliers] = append(out[SheetSuppliers], []any{
			sp.Code, sp.Name, sp.ContactPerson, sp.Phone, sp.Email, sp.Address, sp.Category,
			sp.Rating, sp.Notes, formatTimePtr(sp.LastOrderAt), sp.OrderCount, sp.Active,
		})
	}
	for _, o := range snap.Orders {
		out[SheetOrders] = append(out[SheetOrders], []any{
			o.OrderNo, formatTime(o.CreatedAt), o.SupplierCode, o.SupplierName, string(o.Status), money(o.TotalAmount),
			o.CreatedBy, o.ApprovedBy, formatTimePtr(o.ExpectedDelivery), formatTimePtr(o.DeliveredAt), o.Notes, EncodeLines(o.Lines),
		})
	}
	for _, r := range snap.Requests {
		out[SheetRequests] = append(out[SheetRequests], []any{
			r.RequestNo, formatTime(r.CreatedAt), r.MaterialCode, r.MaterialName, r.Quantity, string(r.Priority),
			r.Requester, r.Department, string(r.Status), r.Approver, formatTimePtr(r.ApprovedAt), r.RejectReason, r.Description,
		})
	}
	for _, b := range snap.Budgets {
		out[SheetBudget] = append(out[SheetBudget], []any{b.Year, b.Category, money(b.MonthlyLimit), money(b.AnnualLimit), money(b.Used), money(b.Remaining)})
	}
	for _, n := range snap.Notifications {
		out[SheetNotifications] = append(out[SheetNotifications], []any{n.NotificationID, formatTime(n.CreatedAt), n.Recipient, string(n.Type), n.Title, n.Message, n.Link, n.Read})
	}
	for _, a := range snap.AuditLogs {
		meta, _ := a.Metadata.MarshalJSON()
		out[SheetAuditLog] = append(out[SheetAuditLog], []any{a.LogID, formatTime(a.CreatedAt), a.Username, a.Action, a.Module, a.RecordKey, a.OldValue, a.NewValue, a.IP, string(meta)})
	}
	for _, l := range snap.Locations {
		out[SheetLocations] = append(out[SheetLocations], []any{l.Code, l.Name, l.Address, l.Manager, l.Phone, l.Active})
	}
	for _, c := range snap.StockCounts {
		out[SheetStockCounts] = append(out[SheetStockCounts], []any{c.CountNo, formatTime(c.CreatedAt), c.Location, c.Category, string(c.Status), c.CreatedBy, c.CompletedBy, formatTimePtr(c.CompletedAt), c.Description})
	}
	return out
}

// decodeRow appends one sheet row to the matching snapshot table.
func decodeRow(snap *store.Snapshot, sheet string, r *rowReader) error {
	switch sheet {
	case SheetUsers:
		u := models.User{Username: r.str(), PasswordHash: r.str(), FullName: r.str(), Email: r.str(), Department: r.str(), Role: models.Role(r.str()), Active: r.boolean(true), LastLogin: r.stampPtr()}
		snap.Users = append(snap.Users, u)
	case SheetMaterials:
		m := models.Material{
			Code: r.str(), Name: r.str(), Category: models.Category(r.str()), Unit: models.Unit(r.str()),
			Stock: r.float(), MinLevel: r.float(), MaxLevel: r.float(), Location: r.str(), Shelf: r.str(),
			Barcode: r.strPtr(), UnitPrice: r.dec(), LastUpdated: r.stamp(), LastCounted: r.stamp(),
		}
		snap.Materials = append(snap.Materials, m)
	case SheetMovements:
		mv := models.StockMovement{CreatedAt: r.stamp(), MaterialCode: r.str(), Type: models.MovementType(r.str()), Quantity: r.float(), Counterparty: r.str(), Description: r.str(), OrderRef: r.str(), Approver: r.str()}
		snap.Movements = append(snap.Movements, mv)
	case SheetSuppliers:
		sp := models.Supplier{
			Code: r.str(), Name: r.str(), ContactPerson: r.str(), Phone: r.str(), Email: r.str(), Address: r.str(), Category: r.str(),
			Rating: r.float(), Notes: r.str(), LastOrderAt: r.stampPtr(), OrderCount: r.integer(), Active: r.boolean(true),
		}
		snap.Suppliers = append(snap.Suppliers, sp)
	case SheetOrders:
		o := models.Order{
			OrderNo: r.str(), CreatedAt: r.stamp(), SupplierCode: r.str(), SupplierName: r.str(), Status: models.OrderStatus(r.str()),
			TotalAmount: r.dec(), CreatedBy: r.str(), ApprovedBy: r.str(), ExpectedDelivery: r.stampPtr(), DeliveredAt: r.stampPtr(), Notes: r.str(),
		}
		lines, err := DecodeLines(r.str())
		if err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderNo = o.OrderNo
		}
		o.Lines = lines
		snap.Orders = append(snap.Orders, o)
	case SheetRequests:
		rq := models.Request{
			RequestNo: r.str(), CreatedAt: r.stamp(), MaterialCode: r.str(), MaterialName: r.str(), Quantity: r.float(),
			Priority: models.Priority(r.str()), Requester: r.str(), Department: r.str(), Status: models.RequestStatus(r.str()),
			Approver: r.str(), ApprovedAt: r.stampPtr(), RejectReason: r.str(), Description: r.str(),
		}
		snap.Requests = append(snap.Requests, rq)
	case SheetBudget:
		b := models.Budget{Year: r.integer(), Category: r.str(), MonthlyLimit: r.dec(), AnnualLimit: r.dec(), Used: r.dec(), Remaining: r.dec()}
		snap.Budgets = append(snap.Budgets, b)
	case SheetNotifications:
		n := models.Notification{NotificationID: r.str(), CreatedAt: r.stamp(), Recipient: r.str(), Type: models.NotificationType(r.str()), Title: r.str(), Message: r.str(), Link: r.str(), Read: r.boolean(false)}
		snap.Notifications = append(snap.Notifications, n)
	case SheetAuditLog:
		a := models.AuditLog{LogID: r.str(), CreatedAt: r.stamp(), Username: r.str(), Action: r.str(), Module: r.str(), RecordKey: r.str(), OldValue: r.str(), NewValue: r.str(), IP: r.str()}
		if meta := r.str(); meta != "" {
			if err := a.Metadata.UnmarshalJSON([]byte(meta)); err != nil {
				return err
			}
		}
		snap.AuditLogs = append(snap.AuditLogs, a)
	case SheetLocations:
		l := models.Location{Code: r.str(), Name: r.str(), Address: r.str(), Manager: r.str(), Phone: r.str(), Active: r.boolean(true)}
		snap.Locations = append(snap.Locations, l)
	case SheetStockCounts:
		c := models.StockCount{
			CountNo: r.str(), CreatedAt: r.stamp(), Location: r.str(), Category: r.str(), Status: models.CountStatus(r.str()),
			CreatedBy: r.str(), CompletedBy: r.str(), CompletedAt: r.stampPtr(), Description: r.str(),
		}
		snap.StockCounts = append(snap.StockCounts, c)
	}
	return r.err
}
