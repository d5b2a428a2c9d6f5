package bot

import (
	"fmt"
	"strings"

	"cabino/internal/estimator"
	"cabino/internal/stats"
	"cabino/internal/storage"
)

var fieldTitles = map[string]string{
	estimator.FieldLength:      "طول",
	estimator.FieldWidth:       "عرض",
	estimator.FieldHeight:      "ارتفاع",
	estimator.FieldCabinetType: "نوع کابینت",
	estimator.FieldMaterial:    "جنس",
}

var statusTitles = map[string]string{
	storage.StatusNew:        "جدید",
	storage.StatusProcessing: "در حال پیگیری",
	storage.StatusCompleted:  "انجام شد",
	storage.StatusCancelled:  "لغو شده",
}

func persianNumber(v float64) string {
	return estimator.ToPersianDigits(fmt.Sprintf("%g", v))
}

// FormatFieldErrors renders every rejected field on its own line with
// the allowed range.
func FormatFieldErrors(verr *estimator.ValidationError) string {
	lines := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		title := fieldTitles[f.Field]
		if title == "" {
			title = f.Field
		}
		switch {
		case f.Constraint == estimator.ConstraintMissing:
			lines = append(lines, fmt.Sprintf("• %s وارد نشده است", title))
		case f.Field == estimator.FieldLength || f.Field == estimator.FieldWidth || f.Field == estimator.FieldHeight:
			lines = append(lines, fmt.Sprintf("• %s باید بین %s تا %s متر باشد",
				title, persianNumber(f.Min), persianNumber(f.Max)))
		default:
			lines = append(lines, fmt.Sprintf("• %s نامعتبر است", title))
		}
	}
	return strings.Join(lines, "\n")
}

// FormatEstimate renders the result message; price is the value shown in
// the current animation frame.
func FormatEstimate(res estimator.Result, price int64) string {
	return fmt.Sprintf(
		"📐 مساحت کابینت بالا: %s\n"+
			"📐 مساحت کابینت پایین: %s\n"+
			"📏 مساحت کل: %s\n"+
			"──────────────────\n"+
			"💰 قیمت تقریبی: %s تومان",
		estimator.FormatArea(res.UpperArea),
		estimator.FormatArea(res.LowerArea),
		estimator.FormatArea(res.TotalArea),
		estimator.FormatPrice(price),
	)
}

func FormatStatistics(st stats.Statistics) string {
	return fmt.Sprintf(
		"🏗 پروژه‌های انجام‌شده: %s+\n"+
			"😊 مشتریان راضی: %s+\n"+
			"🗓 سال تجربه: %s\n"+
			"🧮 برآوردهای انجام‌شده: %s",
		estimator.FormatPrice(st.Projects),
		estimator.FormatPrice(st.Clients),
		estimator.FormatPrice(st.Years),
		estimator.FormatPrice(st.Estimates),
	)
}

func FormatPhoneNumber(phone string) string {
	// +98 912 123 4567
	if strings.HasPrefix(phone, "+98") && len(phone) == 13 {
		return fmt.Sprintf("%s %s %s %s", phone[:3], phone[3:6], phone[6:9], phone[9:])
	}
	return phone
}

func FormatLeadNotification(lead storage.Lead, cabinetTitle, materialTitle string) string {
	username := "—"
	if lead.Username != "" {
		username = "@" + lead.Username
	}
	return fmt.Sprintf(
		"📦 درخواست جدید #%d\n\n"+
			"ابعاد: %g × %g × %g متر\n"+
			"نوع کابینت: %s (×%g)\n"+
			"جنس: %s (×%g)\n"+
			"مساحت کل: %g m²\n"+
			"قیمت تقریبی: %s تومان\n"+
			"──────────────────\n"+
			"تماس: %s\n"+
			"TG: %s\n"+
			"وضعیت: %s\n"+
			"تاریخ: %s",
		lead.ID,
		lead.Length, lead.Width, lead.Height,
		cabinetTitle, lead.CabinetTypeMultiplier,
		materialTitle, lead.MaterialMultiplier,
		lead.TotalArea,
		estimator.GroupThousands(lead.TotalPrice),
		FormatPhoneNumber(lead.Contact),
		username,
		statusTitles[lead.Status],
		lead.CreatedAt.Format("02.01.2006 15:04"),
	)
}

func FormatLeadStatistics(st *storage.LeadStatistics) string {
	return fmt.Sprintf(
		"📊 آمار درخواست‌ها\n\n"+
			"📌 کل: %d (%s تومان)\n"+
			"📅 امروز: %d\n"+
			"📅 هفته اخیر: %d\n"+
			"📅 ماه اخیر: %d\n\n"+
			"🆕 جدید: %d\n"+
			"🔄 در حال پیگیری: %d\n"+
			"✅ انجام شده: %d\n"+
			"❌ لغو شده: %d",
		st.TotalLeads, estimator.GroupThousands(st.TotalValue),
		st.TodayLeads,
		st.WeekLeads,
		st.MonthLeads,
		st.StatusCounts[storage.StatusNew],
		st.StatusCounts[storage.StatusProcessing],
		st.StatusCounts[storage.StatusCompleted],
		st.StatusCounts[storage.StatusCancelled],
	)
}
