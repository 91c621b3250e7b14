package mapper

import (
	"github.com/wanderly/agency-api/internal/domain"
)

// ToQuoteItemDTO converts a quote item to its API representation
func ToQuoteItemDTO(item *domain.QuoteItem) domain.QuoteItemDTO {
	return domain.QuoteItemDTO{
		ID:                 item.ID,
		Type:               item.Type,
		Name:               item.Name,
		StartDate:          item.StartDate,
		EndDate:            item.EndDate,
		SupplierSource:     item.SupplierSource,
		SupplierCode:       item.SupplierCode,
		Price:              item.Price,
		ClientPrice:        item.ClientPrice,
		BookingStatus:      item.BookingStatus,
		ConfirmationNumber: item.ConfirmationNumber,
		BookedAt:           item.BookedAt,
		CancellationPolicy: item.CancellationPolicy,
	}
}

// ToQuoteDTO converts a quote to its API representation
func ToQuoteDTO(quote *domain.Quote) domain.QuoteDTO {
	dto := domain.QuoteDTO{
		ID:               quote.ID,
		QuoteNumber:      quote.QuoteNumber,
		Title:            quote.Title,
		ContactID:        quote.ContactID,
		AgentID:          quote.AgentID,
		AgentName:        quote.AgentName,
		Status:           quote.Status,
		Items:            make([]domain.QuoteItemDTO, 0, len(quote.Items)),
		Travelers:        []string(quote.Travelers),
		Currency:         quote.Currency,
		TotalCost:        quote.TotalCost,
		PaidAmount:       quote.PaidAmount,
		RemainingBalance: quote.RemainingBalance,
		ValidUntil:       quote.ValidUntil,
		SentAt:           quote.SentAt,
		Notes:            quote.Notes,
		Version:          quote.Version,
		CreatedAt:        quote.CreatedAt,
		UpdatedAt:        quote.UpdatedAt,
	}
	if quote.Contact != nil {
		dto.ContactName = quote.Contact.FullName()
	}
	for i := range quote.Items {
		dto.Items = append(dto.Items, ToQuoteItemDTO(&quote.Items[i]))
	}
	return dto
}

// ToQuoteDTOs converts a slice of quotes
func ToQuoteDTOs(quotes []domain.Quote) []domain.QuoteDTO {
	dtos := make([]domain.QuoteDTO, 0, len(quotes))
	for i := range quotes {
		dtos = append(dtos, ToQuoteDTO(&quotes[i]))
	}
	return dtos
}

// ToBookingItemDTO converts a booking item to its API representation
func ToBookingItemDTO(item *domain.BookingItem) domain.BookingItemDTO {
	return domain.BookingItemDTO{
		ID:                 item.ID,
		QuoteItemID:        item.QuoteItemID,
		Name:               item.Name,
		Type:               item.Type,
		SupplierSource:     item.SupplierSource,
		BookingStatus:      item.BookingStatus,
		ConfirmationNumber: item.ConfirmationNumber,
		Price:              item.Price,
		ClientPrice:        item.ClientPrice,
	}
}

// ToBookingDTO converts a booking to its API representation
func ToBookingDTO(booking *domain.Booking) domain.BookingDTO {
	dto := domain.BookingDTO{
		ID:        booking.ID,
		QuoteID:   booking.QuoteID,
		Reference: booking.Reference,
		Status:    booking.Status,
		Items:     make([]domain.BookingItemDTO, 0, len(booking.Items)),
		BookedAt:  booking.BookedAt,
		CreatedAt: booking.CreatedAt,
	}
	for i := range booking.Items {
		dto.Items = append(dto.Items, ToBookingItemDTO(&booking.Items[i]))
	}
	return dto
}

// ToBookingDTOs converts a slice of bookings
func ToBookingDTOs(bookings []domain.Booking) []domain.BookingDTO {
	dtos := make([]domain.BookingDTO, 0, len(bookings))
	for i := range bookings {
		dtos = append(dtos, ToBookingDTO(&bookings[i]))
	}
	return dtos
}

// ToPaymentDTO converts a payment to its API representation
func ToPaymentDTO(payment *domain.Payment) domain.PaymentDTO {
	return domain.PaymentDTO{
		ID:              payment.ID,
		QuoteID:         payment.QuoteID,
		Amount:          payment.Amount,
		Currency:        payment.Currency,
		PaymentIntentID: payment.PaymentIntentID,
		Status:          payment.Status,
		RefundID:        payment.RefundID,
		RefundedAmount:  payment.RefundedAmount,
		RefundedAt:      payment.RefundedAt,
		CreatedAt:       payment.CreatedAt,
	}
}

// ToPaymentDTOs converts a slice of payments
func ToPaymentDTOs(payments []domain.Payment) []domain.PaymentDTO {
	dtos := make([]domain.PaymentDTO, 0, len(payments))
	for i := range payments {
		dtos = append(dtos, ToPaymentDTO(&payments[i]))
	}
	return dtos
}

// ToCommissionDTO converts a commission to its API representation
func ToCommissionDTO(commission *domain.Commission) domain.CommissionDTO {
	return domain.CommissionDTO{
		ID:           commission.ID,
		QuoteID:      commission.QuoteID,
		BookingID:    commission.BookingID,
		AgentID:      commission.AgentID,
		AgentName:    commission.AgentName,
		Amount:       commission.Amount,
		Rate:         commission.Rate,
		Status:       commission.Status,
		PaidAt:       commission.PaidAt,
		ClawedBackAt: commission.ClawedBackAt,
		Notes:        commission.Notes,
		CreatedAt:    commission.CreatedAt,
	}
}

// ToCommissionDTOs converts a slice of commissions
func ToCommissionDTOs(commissions []domain.Commission) []domain.CommissionDTO {
	dtos := make([]domain.CommissionDTO, 0, len(commissions))
	for i := range commissions {
		dtos = append(dtos, ToCommissionDTO(&commissions[i]))
	}
	return dtos
}

// ToTaskDTO converts a task to its API representation
func ToTaskDTO(task *domain.Task) domain.TaskDTO {
	attempts := task.Attempts
	if attempts == nil {
		attempts = domain.AttemptLog{}
	}
	return domain.TaskDTO{
		ID:            task.ID,
		QuoteID:       task.QuoteID,
		ItemID:        task.ItemID,
		BookingID:     task.BookingID,
		Title:         task.Title,
		Description:   task.Description,
		ExecutionType: task.ExecutionType,
		SupplierCode:  task.SupplierCode,
		Status:        task.Status,
		Attempts:      attempts,
		CompletedAt:   task.CompletedAt,
		CreatedAt:     task.CreatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []domain.Task) []domain.TaskDTO {
	dtos := make([]domain.TaskDTO, 0, len(tasks))
	for i := range tasks {
		dtos = append(dtos, ToTaskDTO(&tasks[i]))
	}
	return dtos
}

// ToInvoiceDTO converts an invoice to its API representation
func ToInvoiceDTO(invoice *domain.Invoice) domain.InvoiceDTO {
	return domain.InvoiceDTO{
		ID:            invoice.ID,
		QuoteID:       invoice.QuoteID,
		BookingID:     invoice.BookingID,
		InvoiceNumber: invoice.InvoiceNumber,
		Amount:        invoice.Amount,
		Currency:      invoice.Currency,
		Status:        invoice.Status,
		IssuedAt:      invoice.IssuedAt,
		DueDate:       invoice.DueDate,
		PaidAt:        invoice.PaidAt,
		CreatedAt:     invoice.CreatedAt,
	}
}

// ToInvoiceDTOs converts a slice of invoices
func ToInvoiceDTOs(invoices []domain.Invoice) []domain.InvoiceDTO {
	dtos := make([]domain.InvoiceDTO, 0, len(invoices))
	for i := range invoices {
		dtos = append(dtos, ToInvoiceDTO(&invoices[i]))
	}
	return dtos
}

// ToExpenseDTO converts an expense to its API representation
func ToExpenseDTO(expense *domain.Expense) domain.ExpenseDTO {
	return domain.ExpenseDTO{
		ID:          expense.ID,
		QuoteID:     expense.QuoteID,
		BookingID:   expense.BookingID,
		Category:    expense.Category,
		Subcategory: expense.Subcategory,
		Description: expense.Description,
		Amount:      expense.Amount,
		Currency:    expense.Currency,
		Status:      expense.Status,
		CreatedAt:   expense.CreatedAt,
	}
}

// ToExpenseDTOs converts a slice of expenses
func ToExpenseDTOs(expenses []domain.Expense) []domain.ExpenseDTO {
	dtos := make([]domain.ExpenseDTO, 0, len(expenses))
	for i := range expenses {
		dtos = append(dtos, ToExpenseDTO(&expenses[i]))
	}
	return dtos
}

// ToContactDTO converts a contact to its API representation
func ToContactDTO(contact *domain.Contact) domain.ContactDTO {
	return domain.ContactDTO{
		ID:        contact.ID,
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Notes:     contact.Notes,
		CreatedAt: contact.CreatedAt,
	}
}

// ToContactDTOs converts a slice of contacts
func ToContactDTOs(contacts []domain.Contact) []domain.ContactDTO {
	dtos := make([]domain.ContactDTO, 0, len(contacts))
	for i := range contacts {
		dtos = append(dtos, ToContactDTO(&contacts[i]))
	}
	return dtos
}

// ToActivityDTO converts an activity to its API representation
func ToActivityDTO(activity *domain.Activity) domain.ActivityDTO {
	return domain.ActivityDTO{
		ID:         activity.ID,
		TargetType: activity.TargetType,
		TargetID:   activity.TargetID,
		Title:      activity.Title,
		Body:       activity.Body,
		OccurredAt: activity.OccurredAt,
		ActorID:    activity.ActorID,
		ActorName:  activity.ActorName,
	}
}

// ToActivityDTOs converts a slice of activities
func ToActivityDTOs(activities []domain.Activity) []domain.ActivityDTO {
	dtos := make([]domain.ActivityDTO, 0, len(activities))
	for i := range activities {
		dtos = append(dtos, ToActivityDTO(&activities[i]))
	}
	return dtos
}
