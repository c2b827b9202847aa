/*Package interval implements the small amount of genomic-interval handling
  needed to restrict a locus list to a region of interest.
  It assumes every position fits in a PosType, which is currently defined as
  int32 since that's what BAM files are limited to.
*/
package interval
