package models

// Entity kinds that carry decision trails. The values are stored in
// audit_entries.entity_kind and decision_trails.entity_kind.
const (
	KindContact     = "Contact"
	KindDeal        = "Deal"
	KindInvoice     = "Invoice"
	KindExpense     = "Expense"
	KindDocument    = "Document"
	KindGalleryItem = "GalleryItem"
	KindCompany     = "Company"
	KindUser        = "User"
)
