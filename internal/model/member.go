package model

import "time"

// Member represents a registered customer as stored in the
// `memberaccount` table.  Email and Phone are each unique across all
// members.  The password is never stored in plain text; PasswordHash
// holds the bcrypt digest.
//
// Fields:
//  ID           – primary key (uuid).
//  FirstName    – given name.
//  LastName     – family name.
//  Gender       – free-form gender label supplied at signup.
//  Birthday     – date of birth (date only, UTC).
//  Email        – unique email address.
//  Phone        – unique 10 digit phone number.
//  PasswordHash – bcrypt hashed password.
//  StartDate    – date the membership began.
type Member struct {
    ID           string    // memberaccount.memberid
    FirstName    string    // memberaccount.fname
    LastName     string    // memberaccount.lname
    Gender       string    // memberaccount.gender
    Birthday     time.Time // memberaccount.birthday
    Email        string    // memberaccount.email
    Phone        string    // memberaccount.memberphone
    PasswordHash string    // memberaccount.memberpassword
    StartDate    time.Time // memberaccount.memberstartdate
}
