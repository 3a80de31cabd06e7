package snapshot

import (
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/models"
)

var (
	ContactSchema = NewSchema(models.KindContact,
		Field{Key: "name", Column: "name", Type: String, Required: true},
		Field{Key: "email", Column: "email", Type: String},
		Field{Key: "phone", Column: "phone", Type: String},
		Field{Key: "status", Column: "status", Type: String},
		Field{Key: "revenue", Column: "revenue", Type: Float},
		Field{Key: "lastContact", Column: "last_contact", Type: Time},
		Field{Key: "notes", Column: "notes", Type: String},
		Field{Key: "tags", Column: "tags", Type: StringList},
		Field{Key: "customFields", Column: "custom_fields", Type: Object},
		Field{Key: "companyId", Column: "company_id", Type: Ref, RefKind: models.KindCompany},
		Field{Key: "ownerId", Column: "owner_id", Type: Ref, RefKind: models.KindUser},
	)

	DealSchema = NewSchema(models.KindDeal,
		Field{Key: "title", Column: "title", Type: String, Required: true},
		Field{Key: "value", Column: "value", Type: Float},
		Field{Key: "stage", Column: "stage", Type: String},
		Field{Key: "probability", Column: "probability", Type: Int},
		Field{Key: "closeDate", Column: "close_date", Type: Time},
		Field{Key: "notes", Column: "notes", Type: String},
		Field{Key: "contactId", Column: "contact_id", Type: Ref, RefKind: models.KindContact},
		Field{Key: "companyId", Column: "company_id", Type: Ref, RefKind: models.KindCompany},
		Field{Key: "ownerId", Column: "owner_id", Type: Ref, RefKind: models.KindUser},
	)

	InvoiceSchema = NewSchema(models.KindInvoice,
		Field{Key: "number", Column: "number", Type: String},
		Field{Key: "clientName", Column: "client_name", Type: String},
		Field{Key: "amount", Column: "amount", Type: Float},
		Field{Key: "currency", Column: "currency", Type: String},
		Field{Key: "status", Column: "status", Type: String},
		Field{Key: "issueDate", Column: "issue_date", Type: Time},
		Field{Key: "dueDate", Column: "due_date", Type: Time},
		Field{Key: "paidAt", Column: "paid_at", Type: Time},
		Field{Key: "notes", Column: "notes", Type: String},
		Field{Key: "lineItems", Column: "line_items", Type: ObjectList},
		Field{Key: "contactId", Column: "contact_id", Type: Ref, RefKind: models.KindContact},
	)

	ExpenseSchema = NewSchema(models.KindExpense,
		Field{Key: "description", Column: "description", Type: String, Required: true},
		Field{Key: "amount", Column: "amount", Type: Float},
		Field{Key: "currency", Column: "currency", Type: String},
		Field{Key: "category", Column: "category", Type: String},
		Field{Key: "vendor", Column: "vendor", Type: String},
		Field{Key: "status", Column: "status", Type: String},
		Field{Key: "incurredOn", Column: "incurred_on", Type: Time},
		Field{Key: "receiptUrl", Column: "receipt_url", Type: String},
		Field{Key: "notes", Column: "notes", Type: String},
	)

	DocumentSchema = NewSchema(models.KindDocument,
		Field{Key: "title", Column: "title", Type: String, Required: true},
		Field{Key: "description", Column: "description", Type: String},
		Field{Key: "category", Column: "category", Type: String},
		Field{Key: "url", Column: "url", Type: String},
		Field{Key: "mimeType", Column: "mime_type", Type: String},
		Field{Key: "sizeBytes", Column: "size_bytes", Type: Int},
		Field{Key: "tags", Column: "tags", Type: StringList},
		Field{Key: "ownerId", Column: "owner_id", Type: Ref, RefKind: models.KindUser},
	)

	GalleryItemSchema = NewSchema(models.KindGalleryItem,
		Field{Key: "title", Column: "title", Type: String, Required: true},
		Field{Key: "description", Column: "description", Type: String},
		Field{Key: "imageUrl", Column: "image_url", Type: String},
		Field{Key: "album", Column: "album", Type: String},
		Field{Key: "tags", Column: "tags", Type: StringList},
		Field{Key: "takenAt", Column: "taken_at", Type: Time},
	)
)

func EncodeContact(c *models.Contact) Snapshot {
	return Snapshot{
		"name":         c.Name,
		"email":        c.Email,
		"phone":        c.Phone,
		"status":       c.Status,
		"revenue":      c.Revenue,
		"lastContact":  FormatTime(c.LastContact),
		"notes":        c.Notes,
		"tags":         stringList(c.Tags),
		"customFields": object(c.CustomFields),
		"companyId":    ref(c.CompanyID),
		"ownerId":      ref(c.OwnerID),
	}
}

func EncodeDeal(d *models.Deal) Snapshot {
	return Snapshot{
		"title":       d.Title,
		"value":       d.Value,
		"stage":       d.Stage,
		"probability": d.Probability,
		"closeDate":   FormatTime(d.CloseDate),
		"notes":       d.Notes,
		"contactId":   ref(d.ContactID),
		"companyId":   ref(d.CompanyID),
		"ownerId":     ref(d.OwnerID),
	}
}

func EncodeInvoice(i *models.Invoice) Snapshot {
	items := make([]any, 0, len(i.LineItems))
	for _, item := range i.LineItems {
		items = append(items, map[string]any(item))
	}
	return Snapshot{
		"number":     i.Number,
		"clientName": i.ClientName,
		"amount":     i.Amount,
		"currency":   i.Currency,
		"status":     i.Status,
		"issueDate":  FormatTime(i.IssueDate),
		"dueDate":    FormatTime(i.DueDate),
		"paidAt":     FormatTime(i.PaidAt),
		"notes":      i.Notes,
		"lineItems":  items,
		"contactId":  ref(i.ContactID),
	}
}

func EncodeExpense(e *models.Expense) Snapshot {
	return Snapshot{
		"description": e.Description,
		"amount":      e.Amount,
		"currency":    e.Currency,
		"category":    e.Category,
		"vendor":      e.Vendor,
		"status":      e.Status,
		"incurredOn":  FormatTime(e.IncurredOn),
		"receiptUrl":  e.ReceiptURL,
		"notes":       e.Notes,
	}
}

func EncodeDocument(d *models.Document) Snapshot {
	return Snapshot{
		"title":       d.Title,
		"description": d.Description,
		"category":    d.Category,
		"url":         d.URL,
		"mimeType":    d.MimeType,
		"sizeBytes":   d.SizeBytes,
		"tags":        stringList(d.Tags),
		"ownerId":     ref(d.OwnerID),
	}
}

func EncodeGalleryItem(g *models.GalleryItem) Snapshot {
	return Snapshot{
		"title":       g.Title,
		"description": g.Description,
		"imageUrl":    g.ImageURL,
		"album":       g.Album,
		"tags":        stringList(g.Tags),
		"takenAt":     FormatTime(g.TakenAt),
	}
}

func ref(id *string) any {
	if id == nil || *id == "" {
		return nil
	}
	return *id
}

func stringList(in []string) []any {
	out := make([]any, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}

func object(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
