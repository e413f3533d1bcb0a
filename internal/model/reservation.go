package model

import "time"

// Reservation books People seats at a branch for the instant
// ReservedAt.  All timestamps are UTC.
//
// Fields:
//  ID         – primary key (uuid).
//  MemberID   – member who reserved.
//  BranchID   – branch being reserved.
//  People     – party size, at least one.
//  ReservedAt – requested time of arrival.
//  CreatedAt  – creation timestamp.
type Reservation struct {
    ID         string    // reserve.reserveid
    MemberID   string    // reserve.memberid
    BranchID   string    // reserve.branchid
    People     int       // reserve.people
    ReservedAt time.Time // reserve.time
    CreatedAt  time.Time // reserve.created_at
}
