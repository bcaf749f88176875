// Package export serializa ventas a XML para sistemas contables externos.
package export

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// Namespace del documento de exportación.
const Namespace = "urn:pos-api:sales-export:1"

var _ sales.SalesExporter = (*SalesXMLExporter)(nil)

// SalesXMLExporter arma el XML de ventas con etree y calcula el SHA-256 de su forma canónica (C14N).
type SalesXMLExporter struct {
	now func() time.Time
}

// NewSalesXMLExporter construye el exportador.
func NewSalesXMLExporter() *SalesXMLExporter {
	return &SalesXMLExporter{now: time.Now}
}

// ExportSales devuelve el documento (indentado) y el digest hex de su forma canónica.
func (e *SalesXMLExporter) ExportSales(_ context.Context, from, to time.Time, list []*entity.Sale) ([]byte, string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("SalesExport")
	root.CreateAttr("xmlns", Namespace)
	if !from.IsZero() {
		root.CreateAttr("from", from.UTC().Format(time.RFC3339))
	}
	root.CreateAttr("to", to.UTC().Format(time.RFC3339))
	root.CreateAttr("generatedAt", e.now().UTC().Format(time.RFC3339))
	root.CreateAttr("count", strconv.Itoa(len(list)))

	grand := decimal.Zero
	for _, s := range list {
		grand = grand.Add(s.TotalAmount)
		appendSale(root, s)
	}
	root.CreateAttr("totalAmount", grand.StringFixed(2))

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("export: serializar xml: %w", err)
	}

	// el digest cubre solo el elemento raíz, sin la declaración XML ni la indentación
	rootDoc := etree.NewDocument()
	rootDoc.SetRoot(root.Copy())
	rootDoc.Unindent()
	raw, err := rootDoc.WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("export: serializar raíz: %w", err)
	}
	canonical, err := canonicalize(raw)
	if err != nil {
		return nil, "", fmt.Errorf("export: canonicalizar: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return out, hex.EncodeToString(sum[:]), nil
}

func appendSale(parent *etree.Element, s *entity.Sale) {
	el := parent.CreateElement("Sale")
	el.CreateAttr("id", s.ID)
	el.CreateAttr("transactionId", s.TransactionID)
	el.CreateAttr("cashierId", s.CashierID)
	el.CreateAttr("paymentMethod", s.PaymentMethod)
	el.CreateAttr("createdAt", s.CreatedAt.UTC().Format(time.RFC3339))

	el.CreateElement("TotalAmount").SetText(s.TotalAmount.StringFixed(2))
	el.CreateElement("AmountReceived").SetText(s.AmountReceived.StringFixed(2))
	el.CreateElement("ChangeGiven").SetText(s.ChangeGiven.StringFixed(2))

	items := el.CreateElement("Items")
	for _, it := range s.Items {
		item := items.CreateElement("Item")
		item.CreateAttr("productId", it.ProductID)
		item.CreateAttr("quantity", strconv.FormatInt(it.Quantity, 10))
		item.CreateAttr("unitPrice", it.UnitPrice.StringFixed(2))
		item.CreateAttr("totalPrice", it.TotalPrice.StringFixed(2))
	}
}

func canonicalize(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}
