package controllers

import (
	"fmt"
	"time"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"receiving-portal/models"
	"receiving-portal/services"
)

type OrderController struct {
	Sessions *services.SessionService
}

func NewOrderController(sessions *services.SessionService) *OrderController {
	return &OrderController{Sessions: sessions}
}

// Search applies a new filter set. Page always goes back to 1.
func (c *OrderController) Search(ctx *fiber.Ctx) error {
	session, err := currentSession(ctx)
	if err != nil {
		return err
	}

	var filters services.SearchFilters
	if err := ctx.BodyParser(&filters); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
		})
	}

	page, err := c.Sessions.Search(session, filters)
	if err != nil {
		return respondError(ctx, err)
	}

	return c.pageResponse(ctx, session, page)
}

// List returns the last fetched page without hitting the backend again.
func (c *OrderController) List(ctx *fiber.Ctx) error {
	session, err := currentSession(ctx)
	if err != nil {
		return err
	}
	return c.pageResponse(ctx, session, c.Sessions.CurrentPage(session))
}

func (c *OrderController) Reload(ctx *fiber.Ctx) error {
	session, err := currentSession(ctx)
	if err != nil {
		return err
	}

	page, err := c.Sessions.Reload(session)
	if err != nil {
		return respondError(ctx, err)
	}
	return c.pageResponse(ctx, session, page)
}

func (c *OrderController) NextPage(ctx *fiber.Ctx) error {
	session, err := currentSession(ctx)
	if err != nil {
		return err
	}

	page, err := c.Sessions.NextPage(session)
	if err != nil {
		return respondError(ctx, err)
	}
	return c.pageResponse(ctx, session, page)
}

func (c *OrderController) PrevPage(ctx *fiber.Ctx) error {
	session, err := currentSession(ctx)
	if err != nil {
		return err
	}

	page, err := c.Sessions.PrevPage(session)
	if err != nil {
		return respondError(ctx, err)
	}
	return c.pageResponse(ctx, session, page)
}

func (c *OrderController) SelectWarehouse(ctx *fiber.Ctx) error {
	session, err := currentSession(ctx)
	if err != nil {
		return err
	}

	var input struct {
		WhsCode string `json:"whsCode" validate:"required"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
		})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "whsCode is required",
		})
	}

	page, err := c.Sessions.SelectWarehouse(session, input.WhsCode)
	if err != nil {
		return respondError(ctx, err)
	}
	return c.pageResponse(ctx, session, page)
}

// Open fetches the order detail and builds the working ledger for it.
func (c *OrderController) Open(ctx *fiber.Ctx) error {
	session, err := currentSession(ctx)
	if err != nil {
		return err
	}

	docEntry, err := ctx.ParamsInt("doc_entry")
	if err != nil || docEntry <= 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid doc_entry",
		})
	}

	ledger, err := c.Sessions.OpenOrder(session, docEntry)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":  true,
		"docEntry": ledger.DocEntry,
		"docNum":   ledger.DocNum,
		"whsCode":  ledger.WhsCode,
		"lines":    ledger.Lines(),
	})
}

func (c *OrderController) Close(ctx *fiber.Ctx) error {
	session, err := currentSession(ctx)
	if err != nil {
		return err
	}

	c.Sessions.CloseOrder(session)
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Order closed",
	})
}

// SetQuantity stores one proposed receive quantity. Out-of-range values are
// clamped, the response carries the value actually stored.
func (c *OrderController) SetQuantity(ctx *fiber.Ctx) error {
	session, err := currentSession(ctx)
	if err != nil {
		return err
	}

	lineNum, err := ctx.ParamsInt("line_num")
	if err != nil || lineNum < 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid line_num",
		})
	}

	var input struct {
		Quantity *float64 `json:"quantity" validate:"required"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
		})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "quantity is required",
		})
	}

	line, err := c.Sessions.SetProposed(session, lineNum, *input.Quantity)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"line":    line,
	})
}

// Export writes the current result page to an Excel worksheet.
func (c *OrderController) Export(ctx *fiber.Ctx) error {
	session, err := currentSession(ctx)
	if err != nil {
		return err
	}

	page := c.Sessions.CurrentPage(session)
	criteria := c.Sessions.Criteria(session)

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"Doc Entry", "Doc Num", "Vendor Code", "Vendor Name", "Due Date", "Total Open Qty"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, order := range page.Data {
		values := []interface{}{
			order.DocEntry, order.DocNum, order.VendorCode,
			order.VendorName, order.DocDueDate, order.TotalOpenQty,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to build Excel file",
		})
	}

	filename := fmt.Sprintf("open-orders-%s-%s.xlsx", criteria.WhsCode, time.Now().Format("20060102"))
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return ctx.Send(buf.Bytes())
}

func (c *OrderController) pageResponse(ctx *fiber.Ctx, session *services.SessionState, page *models.OrderPage) error {
	criteria := c.Sessions.Criteria(session)
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":  true,
		"data":     page.Data,
		"total":    page.Total,
		"page":     criteria.Page,
		"pageSize": criteria.PageSize,
		"criteria": criteria,
	})
}
