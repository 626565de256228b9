package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptExtraction is the structured payload the OCR pipeline returns.
// Any field may be absent; Raw keeps the full response for auditing.
type ReceiptExtraction struct {
	Vendor      *string          `json:"vendor"`
	Description *string          `json:"description"`
	TotalCost   *decimal.Decimal `json:"total_cost"`
	Raw         json.RawMessage  `json:"-"`
}

// OCRAPI talks to the document-extraction service.
type OCRAPI struct {
	baseURL string
	client  *http.Client
}

func NewOCRAPI(baseURL string) *OCRAPI {
	return &OCRAPI{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// ExtractReceipt uploads the receipt image and returns the extraction.
// An entirely unparseable response body is a failure; individual missing
// fields are not.
func (o *OCRAPI) ExtractReceipt(ctx context.Context, image []byte) (*ReceiptExtraction, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "receipt")
	if err != nil {
		return nil, fmt.Errorf("build OCR upload: %w", err)
	}
	if _, err := fw.Write(image); err != nil {
		return nil, fmt.Errorf("build OCR upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build OCR upload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/ocr/process", &buf)
	if err != nil {
		return nil, fmt.Errorf("build OCR request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call OCR service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("OCR service returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read OCR response: %w", err)
	}

	var extraction ReceiptExtraction
	if err := json.Unmarshal(raw, &extraction); err != nil {
		return nil, fmt.Errorf("decode OCR response: %w", err)
	}
	extraction.Raw = raw
	return &extraction, nil
}
