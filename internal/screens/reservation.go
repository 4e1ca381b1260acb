package screens

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/galo61408022-ux/Aidoctalk/internal/toast"
)

// ReservationDateCount is how many upcoming dates the wizard offers.
const ReservationDateCount = 20

// ReservationSpecialties are the wizard's first-step choices.
var ReservationSpecialties = []string{
	"General Consultation", "Cardiology", "Dentistry", "Ophthalmology",
	"Orthopedics", "Pediatrics", "Neurology", "Dermatology",
}

// ReservationHospital is one bookable facility for a specialty.
type ReservationHospital struct {
	ID       int
	Name     string
	Location string
}

// ReservationDoctor is one bookable doctor at a facility.
type ReservationDoctor struct {
	Name       string
	Experience string
}

var reservationHospitals = map[string][]ReservationHospital{
	"General Consultation": {
		{ID: 9, Name: "Lagos Medical Center", Location: "Lagos Island"},
		{ID: 10, Name: "City General Hospital", Location: "Surulere"},
	},
	"Cardiology": {
		{ID: 1, Name: "Heart & Cardiovascular Center", Location: "Ikoyi"},
		{ID: 2, Name: "Lagos Medical Center", Location: "Lagos Island"},
	},
	"Dentistry": {
		{ID: 3, Name: "Dental Excellence", Location: "Lekki"},
		{ID: 4, Name: "Smile Dental Clinic", Location: "Yaba"},
	},
	"Ophthalmology": {
		{ID: 5, Name: "Eye Care Specialists", Location: "Victoria Island"},
		{ID: 6, Name: "Vision Plus", Location: "Surulere"},
	},
	"Orthopedics": {
		{ID: 7, Name: "Bone & Joint Clinic", Location: "Yaba"},
		{ID: 8, Name: "Sports Medicine Center", Location: "Lekki"},
	},
	"Pediatrics": {
		{ID: 11, Name: "Pediatric Care Plus", Location: "Surulere"},
		{ID: 12, Name: "Children's Health Center", Location: "Yaba"},
	},
	"Neurology": {
		{ID: 13, Name: "Brain & Nerve Center", Location: "Ikoyi"},
		{ID: 14, Name: "Neurology Clinic", Location: "Lagos Island"},
	},
	"Dermatology": {
		{ID: 15, Name: "Skin Care Clinic", Location: "Victoria Island"},
		{ID: 16, Name: "Derma Plus", Location: "Lekki"},
	},
}

var reservationDoctors = map[string][]ReservationDoctor{
	"Heart & Cardiovascular Center": {
		{Name: "Dr. Adeyemi Okonkwo", Experience: "15 years experience"},
		{Name: "Dr. Chioma Nwosu", Experience: "12 years experience"},
	},
	"Dental Excellence": {
		{Name: "Dr. Tunde Adebayo", Experience: "10 years experience"},
		{Name: "Dr. Amara Eze", Experience: "8 years experience"},
	},
	"Eye Care Specialists": {
		{Name: "Dr. Rasheed Yusuf", Experience: "14 years experience"},
		{Name: "Dr. Folake Adenusi", Experience: "11 years experience"},
	},
	"Bone & Joint Clinic": {
		{Name: "Dr. Samuel Okafor", Experience: "16 years experience"},
		{Name: "Dr. Linda Ogbe", Experience: "9 years experience"},
	},
	"Lagos Medical Center": {
		{Name: "Dr. Oluseun Bello", Experience: "13 years experience"},
		{Name: "Dr. Kemi Awolola", Experience: "10 years experience"},
	},
	"Pediatric Care Plus": {
		{Name: "Dr. Ifeoma Anyanwu", Experience: "12 years experience"},
		{Name: "Dr. Kunle Adelusi", Experience: "7 years experience"},
	},
	"Brain & Nerve Center": {
		{Name: "Dr. Emeka Nnamdi", Experience: "18 years experience"},
		{Name: "Dr. Ada Obi", Experience: "11 years experience"},
	},
	"Skin Care Clinic": {
		{Name: "Dr. Zainab Mohammed", Experience: "9 years experience"},
		{Name: "Dr. Peter Okoro", Experience: "8 years experience"},
	},
}

// ReservationTimes are the bookable appointment slots.
var ReservationTimes = []string{
	"09:00 AM", "10:00 AM", "11:00 AM", "02:00 PM", "03:00 PM", "04:00 PM", "05:00 PM",
}

type reservationInput struct {
	Specialty string `validate:"required"`
	Hospital  string `validate:"required"`
	Doctor    string `validate:"required"`
	Date      string `validate:"required"`
	Time      string `validate:"required"`
}

// Booking is a confirmed reservation.
type Booking struct {
	ID        string
	Specialty string
	Hospital  string
	Doctor    string
	Date      string
	Time      string
}

// Reservation is the four-step booking wizard: specialty, hospital, doctor,
// then date and time. Changing an earlier step clears every later choice so
// a confirmed booking is always internally consistent.
type Reservation struct {
	toasts   *toast.Notifier
	logger   zerolog.Logger
	validate *validator.Validate
	now      func() time.Time

	mu        sync.Mutex
	specialty string
	hospital  string
	doctor    string
	date      string
	timeSlot  string
	bookings  []Booking
}

// NewReservation returns an empty wizard.
func NewReservation(toasts *toast.Notifier, logger zerolog.Logger) *Reservation {
	return &Reservation{
		toasts:   toasts,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Hospitals lists the facilities bookable for a specialty.
func (r *Reservation) Hospitals(specialty string) []ReservationHospital {
	return reservationHospitals[specialty]
}

// Doctors lists the doctors bookable at a facility.
func (r *Reservation) Doctors(hospital string) []ReservationDoctor {
	return reservationDoctors[hospital]
}

// Dates lists the next bookable dates starting tomorrow.
func (r *Reservation) Dates() []string {
	out := make([]string, 0, ReservationDateCount)
	day := r.now()
	for i := 1; i <= ReservationDateCount; i++ {
		out = append(out, day.AddDate(0, 0, i).Format("Mon, Jan 2 2006"))
	}
	return out
}

// SelectSpecialty sets step one and clears every later choice.
func (r *Reservation) SelectSpecialty(specialty string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specialty = specialty
	r.hospital = ""
	r.doctor = ""
	r.date = ""
	r.timeSlot = ""
}

// SelectHospital sets step two and clears every later choice.
func (r *Reservation) SelectHospital(hospital string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hospital = hospital
	r.doctor = ""
	r.date = ""
	r.timeSlot = ""
}

// SelectDoctor sets step three and clears the date and time.
func (r *Reservation) SelectDoctor(doctor string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doctor = doctor
	r.date = ""
	r.timeSlot = ""
}

// SelectSlot sets the final step.
func (r *Reservation) SelectSlot(date, timeSlot string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.date = date
	r.timeSlot = timeSlot
}

// Confirm validates that every step was completed and records the booking.
func (r *Reservation) Confirm() (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	input := reservationInput{
		Specialty: r.specialty,
		Hospital:  r.hospital,
		Doctor:    r.doctor,
		Date:      r.date,
		Time:      r.timeSlot,
	}
	if err := r.validate.Struct(input); err != nil {
		r.toasts.Error("Please complete every step before confirming.")
		return nil, fmt.Errorf("reservation: incomplete booking: %w", err)
	}

	booking := Booking{
		ID:        fmt.Sprintf("RES-%d", r.now().UnixMilli()),
		Specialty: r.specialty,
		Hospital:  r.hospital,
		Doctor:    r.doctor,
		Date:      r.date,
		Time:      r.timeSlot,
	}
	r.bookings = append(r.bookings, booking)
	r.logger.Info().Str("booking", booking.ID).Msg("reservation: confirmed")
	r.toasts.Success(fmt.Sprintf("Reservation %s confirmed with %s", booking.ID, booking.Doctor))

	r.specialty = ""
	r.hospital = ""
	r.doctor = ""
	r.date = ""
	r.timeSlot = ""
	return &booking, nil
}

// Step reports the wizard step currently awaiting input, 1 through 4.
func (r *Reservation) Step() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.specialty == "":
		return 1
	case r.hospital == "":
		return 2
	case r.doctor == "":
		return 3
	default:
		return 4
	}
}

// CanConfirm reports whether every step has a choice.
func (r *Reservation) CanConfirm() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.specialty != "" && r.hospital != "" && r.doctor != "" &&
		r.date != "" && r.timeSlot != ""
}

// Reset abandons the draft without touching confirmed bookings.
func (r *Reservation) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specialty = ""
	r.hospital = ""
	r.doctor = ""
	r.date = ""
	r.timeSlot = ""
}

// Selection returns the wizard's current choices in step order.
func (r *Reservation) Selection() (specialty, hospital, doctor, date, timeSlot string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.specialty, r.hospital, r.doctor, r.date, r.timeSlot
}

// Bookings returns a copy of the confirmed bookings.
func (r *Reservation) Bookings() []Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Booking, len(r.bookings))
	copy(out, r.bookings)
	return out
}
