package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	sbdomain "github.com/smallbiznis/billcollect/internal/scheduledbilling/domain"
)

type createScheduledBillingRequest struct {
	ExternalID      string  `json:"externalId"`
	Source          string  `json:"source"`
	MunicipalityID  string  `json:"municipalityId"`
	LegalID         string  `json:"legalId"`
	InvoicingDate   int     `json:"invoicingDate"`
	InvoicingMonths []int   `json:"invoicingMonths"`
	AnnualAmount    float64 `json:"annualAmount"`
	IntervalType    string  `json:"intervalType"`
}

type updateScheduledBillingRequest struct {
	InvoicingDate   *int     `json:"invoicingDate,omitempty"`
	InvoicingMonths []int    `json:"invoicingMonths,omitempty"`
	AnnualAmount    *float64 `json:"annualAmount,omitempty"`
	IntervalType    *string  `json:"intervalType,omitempty"`
}

func (s *Server) CreateScheduledBilling(c *gin.Context) {
	var req createScheduledBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.scheduledSvc.Create(c.Request.Context(), sbdomain.CreateRequest{
		ExternalID:      strings.TrimSpace(req.ExternalID),
		Source:          strings.TrimSpace(req.Source),
		MunicipalityID:  strings.TrimSpace(req.MunicipalityID),
		LegalID:         strings.TrimSpace(req.LegalID),
		InvoicingDate:   req.InvoicingDate,
		InvoicingMonths: req.InvoicingMonths,
		AnnualAmount:    req.AnnualAmount,
		IntervalType:    strings.TrimSpace(req.IntervalType),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateScheduledBilling(c *gin.Context) {
	var req updateScheduledBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.scheduledSvc.Update(c.Request.Context(), sbdomain.UpdateRequest{
		ID:              strings.TrimSpace(c.Param("id")),
		InvoicingDate:   req.InvoicingDate,
		InvoicingMonths: req.InvoicingMonths,
		AnnualAmount:    req.AnnualAmount,
		IntervalType:    req.IntervalType,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetScheduledBilling(c *gin.Context) {
	resp, err := s.scheduledSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListScheduledBillings(c *gin.Context) {
	resp, err := s.scheduledSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
