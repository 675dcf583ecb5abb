package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/certifex-backend/internal/certificates"
	"github.com/lumenlearn/certifex-backend/pkg/enums"
	pkgerrors "github.com/lumenlearn/certifex-backend/pkg/errors"
)

type testCertificatesService struct {
	issueFn  func(ctx context.Context, input certificates.IssueInput) (*certificates.Detail, error)
	bulkFn   func(ctx context.Context, batchID uuid.UUID) (*certificates.BulkIssueResult, error)
	revokeFn func(ctx context.Context, certificateID uuid.UUID, reason string) (*certificates.Detail, error)
	listFn   func(ctx context.Context, params certificates.ListParams) (*certificates.ListResult, error)
	getFn    func(ctx context.Context, certificateID uuid.UUID) (*certificates.Detail, error)
}

func (s *testCertificatesService) IssueCertificate(ctx context.Context, input certificates.IssueInput) (*certificates.Detail, error) {
	if s.issueFn != nil {
		return s.issueFn(ctx, input)
	}
	return nil, nil
}

func (s *testCertificatesService) IssueForBatch(ctx context.Context, batchID uuid.UUID) (*certificates.BulkIssueResult, error) {
	if s.bulkFn != nil {
		return s.bulkFn(ctx, batchID)
	}
	return nil, nil
}

func (s *testCertificatesService) RevokeCertificate(ctx context.Context, certificateID uuid.UUID, reason string) (*certificates.Detail, error) {
	if s.revokeFn != nil {
		return s.revokeFn(ctx, certificateID, reason)
	}
	return nil, nil
}

func (s *testCertificatesService) ListCertificates(ctx context.Context, params certificates.ListParams) (*certificates.ListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return nil, nil
}

func (s *testCertificatesService) GetCertificate(ctx context.Context, certificateID uuid.UUID) (*certificates.Detail, error) {
	if s.getFn != nil {
		return s.getFn(ctx, certificateID)
	}
	return nil, nil
}

func sampleDetail(subjectID, courseID uuid.UUID) *certificates.Detail {
	return &certificates.Detail{
		ListItem: certificates.ListItem{
			ID:                uuid.New(),
			CertificateNumber: "CERT-GO201-2026-ABC234",
			VerificationCode:  "ABCDEF2345",
			SubjectUserID:     subjectID,
			CourseID:          courseID,
			Status:            enums.CertificateStatusActive,
			IssuedAt:          time.Now().UTC(),
			VerificationURL:   "https://certs.example.com/verify?code=ABCDEF2345",
			CreatedAt:         time.Now().UTC(),
		},
		SubjectName:  "Dana Field",
		SubjectEmail: "dana@example.com",
		CourseTitle:  "Go in Production",
		CourseCode:   "GO201",
	}
}

func TestCertificateIssueSuccess(t *testing.T) {
	subjectID := uuid.New()
	courseID := uuid.New()
	var gotInput certificates.IssueInput
	svc := &testCertificatesService{
		issueFn: func(ctx context.Context, input certificates.IssueInput) (*certificates.Detail, error) {
			gotInput = input
			return sampleDetail(subjectID, courseID), nil
		},
	}

	body := `{"subject_user_id":"` + subjectID.String() + `","course_id":"` + courseID.String() + `","metadata":{"grade":"A"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", strings.NewReader(body))
	resp := httptest.NewRecorder()
	CertificateIssue(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if gotInput.SubjectUserID != subjectID || gotInput.CourseID != courseID {
		t.Fatalf("service received wrong ids: %+v", gotInput)
	}
	if gotInput.Metadata["grade"] != "A" {
		t.Fatalf("metadata not forwarded: %+v", gotInput.Metadata)
	}

	var envelope struct {
		Data certificates.Detail `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.CertificateNumber == "" {
		t.Fatal("response missing certificate number")
	}
}

func TestCertificateIssueRejectsBadUUID(t *testing.T) {
	svc := &testCertificatesService{
		issueFn: func(ctx context.Context, input certificates.IssueInput) (*certificates.Detail, error) {
			t.Fatal("service must not be called on validation failure")
			return nil, nil
		},
	}

	body := `{"subject_user_id":"not-a-uuid","course_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", strings.NewReader(body))
	resp := httptest.NewRecorder()
	CertificateIssue(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCertificateIssueAlreadyIssuedMapsTo409(t *testing.T) {
	svc := &testCertificatesService{
		issueFn: func(ctx context.Context, input certificates.IssueInput) (*certificates.Detail, error) {
			return nil, pkgerrors.New(pkgerrors.CodeAlreadyIssued, "active certificate already exists for subject and course")
		},
	}

	body := `{"subject_user_id":"` + uuid.NewString() + `","course_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", strings.NewReader(body))
	resp := httptest.NewRecorder()
	CertificateIssue(svc, testLogger())(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeAlreadyIssued) {
		t.Fatalf("unexpected error code %s", envelope.Error.Code)
	}
}

func TestCertificateBulkIssue(t *testing.T) {
	batchID := uuid.New()
	svc := &testCertificatesService{
		bulkFn: func(ctx context.Context, id uuid.UUID) (*certificates.BulkIssueResult, error) {
			if id != batchID {
				t.Fatalf("unexpected batch id %s", id)
			}
			return &certificates.BulkIssueResult{
				BatchID: batchID,
				Issued: []certificates.BulkIssued{
					{UserID: uuid.New(), CertificateID: uuid.New(), CertificateNumber: "CERT-GO201-2026-XYZ789"},
				},
				Skipped: []certificates.BulkSkipped{
					{UserID: uuid.New(), Reason: enums.SkipReasonNotCompleted},
				},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches/"+batchID.String()+"/certificates", nil)
	req = addRouteParam(req, "batchID", batchID.String())
	resp := httptest.NewRecorder()
	CertificateBulkIssue(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data certificates.BulkIssueResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(envelope.Data.Issued) != 1 || len(envelope.Data.Skipped) != 1 {
		t.Fatalf("unexpected result shape: %+v", envelope.Data)
	}
}

func TestCertificateBulkIssueUnknownBatch(t *testing.T) {
	svc := &testCertificatesService{
		bulkFn: func(ctx context.Context, id uuid.UUID) (*certificates.BulkIssueResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeUnknownBatch, "batch not found")
		},
	}

	batchID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches/"+batchID+"/certificates", nil)
	req = addRouteParam(req, "batchID", batchID)
	resp := httptest.NewRecorder()
	CertificateBulkIssue(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestCertificateRevoke(t *testing.T) {
	certificateID := uuid.New()
	svc := &testCertificatesService{
		revokeFn: func(ctx context.Context, id uuid.UUID, reason string) (*certificates.Detail, error) {
			if id != certificateID {
				t.Fatalf("unexpected certificate id %s", id)
			}
			if reason != "issued in error" {
				t.Fatalf("unexpected reason %q", reason)
			}
			d := sampleDetail(uuid.New(), uuid.New())
			d.Status = enums.CertificateStatusRevoked
			return d, nil
		},
	}

	body := `{"reason":"issued in error"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates/"+certificateID.String()+"/revoke", strings.NewReader(body))
	req = addRouteParam(req, "certificateID", certificateID.String())
	resp := httptest.NewRecorder()
	CertificateRevoke(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCertificateRevokeAlreadyRevokedMapsTo422(t *testing.T) {
	svc := &testCertificatesService{
		revokeFn: func(ctx context.Context, id uuid.UUID, reason string) (*certificates.Detail, error) {
			return nil, pkgerrors.New(pkgerrors.CodeAlreadyRevoked, "certificate already revoked")
		},
	}

	certificateID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates/"+certificateID+"/revoke", strings.NewReader(`{"reason":"dup"}`))
	req = addRouteParam(req, "certificateID", certificateID)
	resp := httptest.NewRecorder()
	CertificateRevoke(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
}

func TestCertificateRevokeRequiresReason(t *testing.T) {
	svc := &testCertificatesService{
		revokeFn: func(ctx context.Context, id uuid.UUID, reason string) (*certificates.Detail, error) {
			t.Fatal("service must not be called without a reason")
			return nil, nil
		},
	}

	certificateID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates/"+certificateID+"/revoke", strings.NewReader(`{}`))
	req = addRouteParam(req, "certificateID", certificateID)
	resp := httptest.NewRecorder()
	CertificateRevoke(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCertificateListForwardsFilters(t *testing.T) {
	courseID := uuid.New()
	var gotParams certificates.ListParams
	svc := &testCertificatesService{
		listFn: func(ctx context.Context, params certificates.ListParams) (*certificates.ListResult, error) {
			gotParams = params
			return &certificates.ListResult{Items: []certificates.ListItem{}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificates?course_id="+courseID.String()+"&status=revoked&limit=10", nil)
	resp := httptest.NewRecorder()
	CertificateList(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if gotParams.CourseID == nil || *gotParams.CourseID != courseID {
		t.Fatalf("course filter not forwarded: %+v", gotParams)
	}
	if gotParams.Status == nil || *gotParams.Status != enums.CertificateStatusRevoked {
		t.Fatalf("status filter not forwarded: %+v", gotParams)
	}
	if gotParams.Limit != 10 {
		t.Fatalf("limit not forwarded: %d", gotParams.Limit)
	}
}

func TestCertificateListRejectsBadStatus(t *testing.T) {
	svc := &testCertificatesService{
		listFn: func(ctx context.Context, params certificates.ListParams) (*certificates.ListResult, error) {
			t.Fatal("service must not be called with a bad status")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificates?status=bogus", nil)
	resp := httptest.NewRecorder()
	CertificateList(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCertificateDetail(t *testing.T) {
	certificateID := uuid.New()
	svc := &testCertificatesService{
		getFn: func(ctx context.Context, id uuid.UUID) (*certificates.Detail, error) {
			if id != certificateID {
				t.Fatalf("unexpected certificate id %s", id)
			}
			return sampleDetail(uuid.New(), uuid.New()), nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificates/"+certificateID.String(), nil)
	req = addRouteParam(req, "certificateID", certificateID.String())
	resp := httptest.NewRecorder()
	CertificateDetail(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestCertificateDetailBadPathID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificates/nope", nil)
	req = addRouteParam(req, "certificateID", "nope")
	resp := httptest.NewRecorder()
	CertificateDetail(&testCertificatesService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
