package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/kuafsurvey/internal/store"
	"github.com/m3rciful/kuafsurvey/internal/survey"
)

const (
	textWelcome = "Assalomu aleykum!\n\nKUAF talabalari uchun rasmiy so'rovnoma botiga xush kelibsiz.\n\n" +
		"📋 So'rovnomani boshlash uchun quyidagilardan birini kiriting:\n\n" +
		"• Passport seriya va raqami (masalan: AB1234567)\n• Talaba ID raqami\n• JSHSHIR (14 raqam)"
	textNotFound     = "❌ Talaba topilmadi!\n\nIltimos, ma'lumotlarni to'g'ri kiritganingizga ishonch hosil qiling."
	textStudentFound = "✅ Talaba topildi:\n\n👤 F.I.O: %s\n📞 Telefon: %s\n👥 Guruh: %s"
	textNotEntered   = "Kiritilmagan"

	textSubscribe        = "❗️ Botdan foydalanish uchun avval kanalimizga obuna bo'ling!"
	textSubscribeButton  = "📢 Kanalga obuna bo'lish"
	textCheckButton      = "✅ Obunani tekshirish"
	textSubscribed       = "✅ Obuna tasdiqlandi!"
	textNotSubscribed    = "❌ Siz hali kanalga obuna bo'lmadingiz!"
	textSendLocation     = "📍 Lokatsiyani yuborish"
	textAccepted         = "✅ Qabul qilindi"
	textYes              = "Ha ✅"
	textNo               = "Yo'q ❌"
	textCompleted        = "✅ So'rovnoma muvaffaqiyatli yakunlandi!\n\nBarcha ma'lumotlaringiz saqlandi.\n\nIshtirok etganingiz uchun rahmat! 🙏"
	textAlreadySubmitted = "ℹ️ Siz so'rovnomani avval to'ldirgansiz. Javoblaringiz saqlangan."
	textError            = "❌ Xatolik yuz berdi. Iltimos, qaytadan urinib ko'ring."
	textUseButtons       = "👇 Iltimos, quyidagi tugmalardan birini tanlang."
	textUnknown          = "Boshlash uchun /start buyrug'ini yuboring."
	textStaleButton      = "Eskirgan tugma"
)

// Admin panel.
const (
	textAdminPanel      = "👨‍💼 Admin Panel"
	textAccessDenied    = "🚫 Sizda bu bo'limga kirish huquqi yo'q."
	textSuperAdminOnly  = "Faqat admin uchun"
	textNoPermission    = "Ruxsat yo'q"
	btnExportResponses  = "📤 Excel Export"
	btnExportStudents   = "📋 Talabalar ro'yxati"
	btnImport           = "📥 Excel Import"
	btnStats            = "📊 Statistika"
	btnAddStaff         = "➕ Xodim qo'shish"
	btnRemoveStaff      = "➖ Xodim o'chirish"
	btnAnnounce         = "📢 E'lon yuborish"
	btnClearSurveys     = "🗑 So'rovnomalarni tozalash"
	btnConfirmClear     = "✅ Ha, o'chirish"
	btnCancelClear      = "❌ Yo'q"
	textExportPreparing = "📤 Excel fayl tayyorlanmoqda..."
	textExportResponses = "✅ So'rovnoma natijalari"
	textExportStudents  = "✅ Talabalar ro'yxati"
	textExportEmpty     = "❌ Ma'lumot yo'q yoki xatolik yuz berdi"
	textImportPrompt    = "📥 Excel faylni yuboring:"
	textImportExpectXLS = "❌ Iltimos, .xlsx formatidagi faylni yuboring."
	textImportTooLarge  = "❌ Fayl juda katta."
	textImportStarted   = "⏳ Import boshlanmoqda..."
	textImportDone      = "✅ Import yakunlandi!\n\n➕ Qo'shildi: %d\n🔄 Yangilandi: %d\n⚠️ Xatolar: %d"
	textImportFailed    = "❌ Import xatoligi:\n%s"
	textClearConfirm    = "⚠️ DIQQAT!\n\n%d ta so'rovnoma o'chiriladi.\n\nDavom etasizmi?"
	textCleared         = "✅ %d ta so'rovnoma o'chirildi!"
	textClearCancelled  = "❌ O'chirish bekor qilindi."
	textNothingToClear  = "So'rovnomalar mavjud emas"
	textStaffPrompt     = "👤 Xodim Telegram ID sini kiriting:"
	textStaffAdded      = "✅ Xodim qo'shildi: %d"
	textStaffAddFailed  = "❌ Xatolik yoki allaqachon mavjud"
	textRemovePrompt    = "👤 O'chiriladigan xodim Telegram ID sini kiriting:"
	textStaffRemoved    = "✅ Xodim o'chirildi: %d"
	textStaffNotFound   = "❌ Xodim topilmadi"
	textBadID           = "❌ Noto'g'ri ID format"
	textAnnouncePrompt  = "📢 E'lon matnini yuboring:"
	textAnnounceEmpty   = "❌ E'lon matni bo'sh bo'lmasligi kerak."
	textAnnounceQueued  = "✅ E'lon navbatga qo'yildi.\n\n👥 Qabul qiluvchilar: %d"
	textAnnounceNoUsers = "❌ E'lon yuborish uchun foydalanuvchilar yo'q."
	textCancelled       = "❌ Bekor qilindi."
)

var prompts = map[survey.Step]string{
	survey.StepSearch:             textWelcome,
	survey.StepPhone:              "📱 Telefon raqamingizni kiriting:\n\n(Qo'shimcha raqamlar ham kiritish mumkin)\nMasalan: +998901234567 yoki +998901234567, +998991234567",
	survey.StepAddress:            "🏠 Doimiy yashash manzilingizni kiriting:\n\n(To'liq yozilsin, pasport bo'yicha)\nMasalan: Andijon viloyati, Andijon shahri, Ozodlik MFY, Shahrihon ko'cha, 23-uy, 7-xonadon",
	survey.StepLocation:           "📍 Doimiy yashash joyingiz lokatsiyasini yuboring:\n\n(📎 Joylashuv tugmasini bosing yoki lokatsiyani qo'lda yuboring)",
	survey.StepEducation:          "🎓 Avvalgi o'qigan ta'lim muassasangizni kiriting:\n\nMasalan: Andijon viloyati, Buloqboshi tumani, 5-umumta'lim maktabi, 2025-yil 11-sinfni tamomlagan",
	survey.StepDocument:           "📄 Hujjat seriya raqamini kiriting:\n\n(Shahodatnoma yoki diplom)",
	survey.StepAchievements:       "🏆 Yutuqlaringiz bormi?",
	survey.StepAchievementDetails: "🏆 Yutuqlaringizni yozing:\n\nMasalan: Shahmatdan O'zbekiston chempioni",
	survey.StepCertificate:        "📜 Til sertifikatingiz bormi?",
	survey.StepCertificateType:    "📜 Qaysi til sertifikatingiz bor?",
	survey.StepCertificateDetails: "📜 Sertifikat ma'lumotlarini kiriting:\n\n(Til, daraja, berilgan sana, amal qilish muddati)\nMasalan: IELTS 6.5, 01.01.2025, 01.01.2027",
	survey.StepGrant:              "🎓 Grant (imtiyoz) bormi?",
	survey.StepGrantDetails:       "🎓 Grant ma'lumotlarini kiriting:\n\nMasalan: 100% 1-yil yoki 50% 4-yil",
	survey.StepSocialProtection:   "🛡 Ijtimoiy himoya reestriga kirgansizmi?",
	survey.StepIronBook:           "📕 Temir daftarda turasizmi?",
	survey.StepYouthBook:          "📗 Yoshlar daftarida turasizmi?",
	survey.StepFatherAlive:        "👨 Otangiz hayotdami?",
	survey.StepFatherName:         "👨 Otangizning to'liq ISM va FAMILIYASini kiriting:\n\nMasalan: Karimov Karim Karimovich",
	survey.StepFatherPhone:        "📱 Otangizning telefon raqamini kiriting:",
	survey.StepMotherAlive:        "👩 Onangiz hayotdami?",
	survey.StepMotherName:         "👩 Onangizning to'liq ISM va FAMILIYASini kiriting:\n\nMasalan: Karimova Karima Karimovna",
	survey.StepMotherPhone:        "📱 Onangizning telefon raqamini kiriting:",
	survey.StepParentsTogether:    "👨‍👩‍👦 Ota-onangiz birga yashaydimi?",
	survey.StepLivingType:         "🏠 Qayerda yashaysiz?",
	survey.StepDormitory:          "🏢 KUAF ga qayerdan qatnaysiz?",
	survey.StepRentAddress:        "🏠 Ijara xonadonining manzilini kiriting:\n\nMasalan: Andijon shahar, Bobur shox ko'chasi, Sanoat MFY, 12-uy, 34-xonadon",
	survey.StepRentLocation:       "📍 Ijara xonadonining lokatsiyasini yuboring:",
	survey.StepRentOwner:          "👤 Ijara xonadoni egasining ISM va FAMILIYASini kiriting:",
	survey.StepWorking:            "💼 Ishlaysizmi?",
	survey.StepWorkplace:          "🏢 Ish joyingizni kiriting:\n\n(To'liq manzil va lavozim)\nMasalan: Andijon shahar, IT Park, Dasturchi",
	survey.StepMarried:            "💍 Oilalikmisiz?",
	survey.StepForeignPassport:    "📘 Xorijga chiqish pasportingiz mavjudmi?",
	survey.StepSocialChannels:     "📱 Ijtimoiy tarmoqlarda kanal yoki guruhlaringiz bormi?\n\n(Shaxsiy emas, o'zingiz ochgan har qanday auditoriyaga ega guruh yoki kanal)",
	survey.StepSocialLinks:        "🔗 Barcha kanal va guruhlaringiz linkini yuboring:\n\n(Telegram, Instagram, YouTube, TikTok va boshqalar)\nMasalan:\nhttps://t.me/kanalim\nhttps://instagram.com/sahifam",
}

func studentCard(s survey.Subject) string {
	phone := strings.TrimSpace(s.Phone)
	if phone == "" {
		phone = textNotEntered
	}
	return fmt.Sprintf(textStudentFound, s.Fullname, phone, s.GroupName)
}

func statsText(st store.Stats, now time.Time) string {
	return fmt.Sprintf("*📊 STATISTIKA*\n\n👥 Jami talabalar: %d\n✅ To'ldirilgan so'rovnomalar: %d\n👨‍💼 Xodimlar: %d\n\n📅 %s",
		st.Students, st.Surveys, st.Staff, now.Format("02.01.2006 15:04"))
}
