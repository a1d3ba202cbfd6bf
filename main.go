package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/taxdraft/ocr-tax-extraction/client"
	"github.com/taxdraft/ocr-tax-extraction/config"
	"github.com/taxdraft/ocr-tax-extraction/handler"
	"github.com/taxdraft/ocr-tax-extraction/service"
)

func main() {
	cfg := config.LoadConfig()

	// One long-lived Tesseract engine, reused across documents and
	// released when the server exits.
	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath)
	defer tesseractClient.Terminate()

	// Primary: PDF-aware source (embedded text, scanned-page OCR).
	// Secondary: raw OCR, consulted when primary confidence is low.
	pdfClient := client.NewPDFClient(tesseractClient)
	source := service.NewHybridSource(pdfClient, tesseractClient)

	pipeline := service.NewPipeline(source, service.NewClassifier())
	extractHandler := handler.NewExtractHandler(pipeline, cfg.OCRTimeout)

	router := gin.Default()
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Tax Document Extraction",
		})
	})

	api := router.Group("/api/v1")
	{
		documents := api.Group("/documents")
		{
			documents.POST("/extract", extractHandler.ExtractDocuments)
		}
	}

	log.Printf("Starting Tax Document Extraction Service on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
