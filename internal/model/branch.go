package model

// Branch is a physical shop location.  Seats is the fixed seating
// capacity that reservations are admitted against.
type Branch struct {
    ID      string // branch.branchid
    Name    string // branch.branchname
    Address string // branch.branchaddress
    Phone   string // branch.branchphone
    Seats   int    // branch.seatnumber
}

// BranchAvailability pairs a branch with the seats still free in the
// reservation window around a requested time.
type BranchAvailability struct {
    Branch
    Position       int // index of the branch in the full branch listing
    Committed      int // seats held by overlapping reservations
    AvailableSeats int // Seats - Committed, never negative
}
