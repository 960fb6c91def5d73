package Controllers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"CSW/Models"
)

// LeadsController exposes captured leads to the dashboard
type LeadsController struct {
	DB *gorm.DB
}

func NewLeadsController(db *gorm.DB) *LeadsController {
	return &LeadsController{DB: db}
}

func (ctrl *LeadsController) leadsQuery(c *fiber.Ctx) *gorm.DB {
	query := ctrl.DB.Model(&Models.ActivityEntry{})
	if from := c.Query("from"); from != "" {
		if parsed, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("created_at >= ?", parsed)
		}
	}
	if to := c.Query("to"); to != "" {
		if parsed, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("created_at < ?", parsed.AddDate(0, 0, 1))
		}
	}
	return query
}

// GetLeads retrieves activity entries with pagination and date filtering
func (ctrl *LeadsController) GetLeads(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit < 1 || limit > 500 {
		limit = 50
	}

	var total int64
	if err := ctrl.leadsQuery(c).Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count leads"})
	}

	var leads []Models.ActivityEntry
	if err := ctrl.leadsQuery(c).
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&leads).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve leads"})
	}

	return c.JSON(fiber.Map{
		"leads": leads,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// ExportLeads streams the filtered leads as an Excel workbook
func (ctrl *LeadsController) ExportLeads(c *fiber.Ctx) error {
	var leads []Models.ActivityEntry
	if err := ctrl.leadsQuery(c).Order("created_at desc").Find(&leads).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve leads"})
	}

	f := excelize.NewFile()
	sheetName := "Leads"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create export"})
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Created At", "Phone", "Vehicle", "Brand", "Model", "Fuel Type", "Session Token",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err == nil {
		f.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	for rowIndex, lead := range leads {
		row := rowIndex + 2
		values := []interface{}{
			lead.CreatedAt.Format("2006-01-02 15:04:05"),
			lead.Phone,
			lead.VehicleSummary,
			lead.Vehicle.BrandName,
			lead.Vehicle.ModelName,
			lead.Vehicle.FuelType,
			lead.SessionToken,
		}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := 0; i < len(headers); i++ {
		f.SetColWidth(sheetName, string('A'+rune(i)), string('A'+rune(i)), 20)
	}

	if defaultIndex, err := f.GetSheetIndex("Sheet1"); err == nil && defaultIndex != -1 {
		f.DeleteSheet("Sheet1")
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write export"})
	}

	filename := fmt.Sprintf("leads-%s.xlsx", time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buffer.Bytes())
}
